// invitectl exercises the invitation flow from the command line: it
// normalizes a token, verifies it, records a decision, and on acceptance
// provisions the account.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"clientdesk/config"
	"clientdesk/internal/inviteflow"
)

func main() {
	var (
		apiURL   = flag.String("api", "http://localhost:8080", "backend base URL")
		rawToken = flag.String("token", "", "invitation token as it appears in the URL")
		action   = flag.String("action", "verify", "verify, accept, or reject")
		password = flag.String("password", "", "password for account creation (accept only)")
		confirm  = flag.String("confirm", "", "password confirmation (accept only)")
		timeout  = flag.Duration("timeout", 10*time.Second, "per-attempt request timeout")
	)
	flag.Parse()

	logger := config.NewLogger()

	if *rawToken == "" {
		fmt.Fprintln(os.Stderr, "invitectl: -token is required")
		os.Exit(2)
	}

	client := inviteflow.NewClient(*apiURL, inviteflow.WithAttemptTimeout(*timeout))
	nav := inviteflow.NavigatorFunc(func(path string) {
		fmt.Printf("-> navigate to %s\n", path)
	})
	flow := inviteflow.NewFlow(client, client, client, nav, logger)

	ctx := context.Background()

	if err := flow.Start(ctx, *rawToken); err != nil {
		msg, _ := flow.Message()
		fmt.Fprintf(os.Stderr, "invitectl: %s\n", msg)
		os.Exit(1)
	}

	identity := flow.Identity()
	fmt.Printf("invitation for %s (%s %s)\n", identity.Email, identity.FirstName, identity.LastName)

	switch *action {
	case "verify":
		return
	case "reject":
		if err := flow.Reject(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "invitectl: %v\n", err)
			os.Exit(1)
		}
		msg, _ := flow.Message()
		fmt.Println(msg)
	case "accept":
		if err := flow.Accept(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "invitectl: %v\n", err)
			os.Exit(1)
		}
		msg, _ := flow.Message()
		fmt.Println(msg)
		if *password == "" {
			fmt.Println("no -password given; skipping account creation")
			return
		}
		if err := flow.CreateAccount(ctx, *password, *confirm); err != nil {
			msg, _ := flow.Message()
			fmt.Fprintf(os.Stderr, "invitectl: %s\n", msg)
			os.Exit(1)
		}
		msg, _ = flow.Message()
		fmt.Println(msg)
	default:
		fmt.Fprintf(os.Stderr, "invitectl: unknown action %q\n", *action)
		os.Exit(2)
	}
}
