package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/HakanVardarr/file-server/internal/netx"
	"github.com/HakanVardarr/file-server/internal/shared"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	APIKey   string `json:"api_key"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	APIKey string `json:"api_key"`
}

// App drives the interactive register/login commands against a running
// credential server.
type App struct {
	serverURL string
	client    *http.Client
	reader    *bufio.Reader
	out       io.Writer
}

func NewApp(serverURL string, client *http.Client, in io.Reader, out io.Writer) *App {
	return &App{
		serverURL: serverURL,
		client:    client,
		reader:    bufio.NewReader(in),
		out:       out,
	}
}

// Run executes one command. Supported commands: register, login.
func (a *App) Run(ctx context.Context, command string) error {
	switch command {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx)
	default:
		return fmt.Errorf("unknown command %q (expected register or login)", command)
	}
}

func (a *App) register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	var resp registerResponse
	err = netx.PostJSON(ctx, a.client, a.serverURL+"/user/register", registerRequest{
		Username: username,
		Email:    email,
		Password: string(password),
	}, &resp)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s <%s>\n", resp.Username, resp.Email)
	a.printKey(resp.APIKey)
	return nil
}

func (a *App) login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	var resp loginResponse
	err = netx.PostJSON(ctx, a.client, a.serverURL+"/user/login", loginRequest{
		Email:    email,
		Password: string(password),
	}, &resp)
	if err != nil {
		return err
	}

	a.printKey(resp.APIKey)
	return nil
}

func (a *App) printKey(key string) {
	fmt.Fprintf(a.out, "API key (shown once, store it safely): %s\n", key)
}
