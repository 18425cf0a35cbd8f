package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pribylovaa/bragboard/internal/auth"
	"github.com/pribylovaa/bragboard/internal/models"
)

// tokenCmd выпускает токен для локальной разработки; секрет должен совпадать
// с auth.secret сервиса.
func tokenCmd() *cobra.Command {
	var (
		secret, issuer string
		author         models.Author
		ttl            time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		Example: heredoc.Doc(`
			$ export COMMENTS_TOKEN=$(AUTH_SECRET=... commentctl token --name "Ada" --role moderator)
		`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("AUTH_SECRET")
			}

			if secret == "" {
				return fmt.Errorf("secret is required: pass --secret or set AUTH_SECRET")
			}

			if author.ID == "" {
				author.ID = uuid.NewString()
			}

			tok, err := auth.New(secret, issuer).Issue(author, ttl)
			if err != nil {
				return fmt.Errorf("issuing token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), tok)

			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HMAC secret (default $AUTH_SECRET)")
	cmd.Flags().StringVar(&issuer, "issuer", "bragboard", "Token issuer")
	cmd.Flags().StringVar(&author.ID, "user", "", "User ID (random UUID if empty)")
	cmd.Flags().StringVar(&author.Name, "name", "Developer", "Display name")
	cmd.Flags().StringVar(&author.Role, "role", "employee", "Role")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}
