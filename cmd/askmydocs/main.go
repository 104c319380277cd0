package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/askmydocs/askmydocs-cli/internal/app"
	"github.com/askmydocs/askmydocs-cli/internal/tui"
)

const version = "1.0.0"

var (
	statusProcessed  = color.New(color.FgGreen)
	statusProcessing = color.New(color.FgYellow)
	statusFailed     = color.New(color.FgRed)
	errLine          = color.New(color.FgRed, color.Bold)
	okLine           = color.New(color.FgGreen)
)

func buildApp(apiURL string) (*app.Application, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIBaseURL = strings.TrimRight(apiURL, "/")
	}
	application, err := app.NewApplication(cfg)
	if err != nil {
		return nil, err
	}
	application.Session.Initialize()
	return application, nil
}

// requireSession applies the protected-route guard to headless commands.
func requireSession(a *app.Application) error {
	if !a.Guard.CanEnterProtected() {
		return fmt.Errorf("not logged in; run `askmydocs login` first")
	}
	return nil
}

func promptLine(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func formatStatus(s app.DocumentStatus) string {
	switch {
	case s == app.StatusProcessed:
		return statusProcessed.Sprint(s)
	case s.Failed():
		return statusFailed.Sprint(s)
	default:
		return statusProcessing.Sprint(s)
	}
}

func main() {
	var apiURL string

	root := &cobra.Command{
		Use:     "askmydocs",
		Short:   "AskMyDocs - upload documents and ask questions about them",
		Long:    "AskMyDocs is a terminal client for the AskMyDocs API.\n\nRun without arguments for the interactive TUI, or use the subcommands for scripting.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(apiURL)
			if err != nil {
				return err
			}
			defer a.Close()
			program := tea.NewProgram(tui.NewRootModel(a), tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides config and "+app.EnvAPIURL+")")

	var loginEmail, loginPassword string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(apiURL)
			if err != nil {
				return err
			}
			defer a.Close()
			email := loginEmail
			if email == "" {
				if email, err = promptLine("Email"); err != nil {
					return err
				}
			}
			password := loginPassword
			if password == "" {
				if password, err = promptLine("Password"); err != nil {
					return err
				}
			}
			if err := a.Session.Login(cmd.Context(), email, password); err != nil {
				errLine.Fprintln(os.Stderr, app.UserMessage(err))
				return fmt.Errorf("login failed")
			}
			okLine.Println("Logged in.")
			return nil
		},
	}
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")

	var regUsername, regEmail, regPassword string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(apiURL)
			if err != nil {
				return err
			}
			defer a.Close()
			username, email, password := regUsername, regEmail, regPassword
			if username == "" {
				if username, err = promptLine("Username"); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = promptLine("Email"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptLine("Password"); err != nil {
					return err
				}
			}
			if err := a.Session.Register(cmd.Context(), username, email, password); err != nil {
				errLine.Fprintln(os.Stderr, app.UserMessage(err))
				return fmt.Errorf("registration failed")
			}
			okLine.Println("Account created. Log in with `askmydocs login`.")
			return nil
		},
	}
	registerCmd.Flags().StringVar(&regUsername, "username", "", "username")
	registerCmd.Flags().StringVar(&regEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&regPassword, "password", "", "account password (prompted when omitted)")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(apiURL)
			if err != nil {
				return err
			}
			defer a.Close()
			a.Session.Logout()
			okLine.Println("Logged out.")
			return nil
		},
	}

	docsCmd := &cobra.Command{
		Use:   "docs",
		Short: "Manage uploaded documents",
	}

	docsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List documents and their ingestion status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(apiURL)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireSession(a); err != nil {
				return err
			}
			docs, err := a.Documents.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", app.UserMessage(err))
			}
			if len(docs) == 0 {
				fmt.Println("No documents uploaded yet.")
				return nil
			}
			for _, doc := range docs {
				uploaded := ""
				if !doc.UploadTimestamp.IsZero() {
					uploaded = doc.UploadTimestamp.Format("2006-01-02 15:04")
				}
				fmt.Printf("%6s  %-40s  %-16s  %s\n", doc.ID, doc.Filename, uploaded, formatStatus(doc.Status))
			}
			return nil
		},
	}

	docsUploadCmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a document for ingestion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(apiURL)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireSession(a); err != nil {
				return err
			}
			contents, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if int64(len(contents)) > a.Config.MaxUploadBytes {
				return fmt.Errorf("%s exceeds the %d MB upload limit", args[0], a.Config.MaxUploadBytes>>20)
			}
			rec, err := a.Documents.Upload(cmd.Context(), filepath.Base(args[0]), contents)
			if err != nil {
				return fmt.Errorf("%s", app.UserMessage(err))
			}
			okLine.Printf("Uploaded %s (id %s, status %s)\n", rec.Filename, rec.ID, rec.Status)
			return nil
		},
	}

	var deleteYes bool
	docsDeleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(apiURL)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireSession(a); err != nil {
				return err
			}
			id, err := app.ParseDocumentID(args[0])
			if err != nil {
				return fmt.Errorf("invalid document id %q", args[0])
			}
			if !deleteYes {
				answer, err := promptLine(fmt.Sprintf("Delete document %s? [y/N]", id))
				if err != nil {
					return err
				}
				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					fmt.Println("Aborted.")
					return nil
				}
			}
			if err := a.Documents.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("%s", app.UserMessage(err))
			}
			okLine.Printf("Deleted document %s\n", id)
			return nil
		},
	}
	docsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	docsCmd.AddCommand(docsListCmd, docsUploadCmd, docsDeleteCmd)

	askCmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question answered from your documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(apiURL)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireSession(a); err != nil {
				return err
			}
			answer, err := a.Query.Submit(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("%s", app.UserMessage(err))
			}
			fmt.Println(answer)
			return nil
		},
	}

	pingCmd := &cobra.Command{
		Use:    "ping",
		Short:  "Check that the API is reachable",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(apiURL)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.API.Health(cmd.Context()); err != nil {
				return fmt.Errorf("%s", app.UserMessage(err))
			}
			okLine.Println("API is up.")
			return nil
		},
	}

	root.AddCommand(loginCmd, registerCmd, logoutCmd, docsCmd, askCmd, pingCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
