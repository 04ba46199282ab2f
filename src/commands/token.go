package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/username/finboard/src/security"
)

type tokenCmd struct {
	user string
	ttl  time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "issue a development access token" }
func (*tokenCmd) Usage() string {
	return `finboard token -user <id> [-ttl <duration>]

  Prints a signed bearer token for the given user id. Useful for local
  development when no identity provider is configured.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.user, "user", "", "User id to issue the token for (required)")
	f.DurationVar(&c.ttl, "ttl", 0, "Token lifetime (defaults to ACCESS_TOKEN_EXPIRY)")
}

func (c *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.user == "" {
		fmt.Fprintln(os.Stderr, "Error: -user is required")
		return subcommands.ExitUsageError
	}
	cfg := loadConfig()

	ttl := c.ttl
	if ttl <= 0 {
		ttl = cfg.AccessTokenExpiry
	}
	auth, err := security.NewAuthService(cfg.JWTSecret, ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	token, err := auth.GenerateToken(c.user)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error issuing token: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}
