// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/safebites/internal/session"
)

// --- login ---

var loginCmd = &cobra.Command{
	Use:   "login USER_ID",
	Short: "Log in and store your profile locally",
	Long: `Login authenticates against the service at session.backend_url and
stores the returned profile in the session file. The password is read from
--password or, when that is empty, from the first line of standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	password, err := passwordFlag(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := sessionStore(cfg)
	if err != nil {
		return err
	}

	u, err := sessionClient(cfg).Login(context.Background(), args[0], password)
	if err != nil {
		return err
	}
	if err := store.Save(u); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s)\n", u.Name, u.UserID)
	return nil
}

// --- signup ---

var signupCmd = &cobra.Command{
	Use:   "signup USER_ID",
	Short: "Create an account with your allergies",
	Long: `Signup registers a new account with the service and logs in. Allergies
are a comma-separated list, for example "Milk, Peanut".`,
	Args: cobra.ExactArgs(1),
	RunE: runSignup,
}

func runSignup(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	age, _ := cmd.Flags().GetString("age")
	allergy, _ := cmd.Flags().GetString("allergy")
	diet, _ := cmd.Flags().GetString("diet")

	password, err := passwordFlag(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := sessionStore(cfg)
	if err != nil {
		return err
	}

	u, err := sessionClient(cfg).Signup(context.Background(), session.SignupRequest{
		Name:           name,
		UserID:         args[0],
		Age:            age,
		Password:       password,
		Allergy:        allergy,
		DietPreference: diet,
	})
	if err != nil {
		return err
	}
	if err := store.Save(u); err != nil {
		return err
	}
	fmt.Printf("Account created for %s (%s)\n", u.Name, u.UserID)
	return nil
}

// --- logout ---

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := sessionStore(cfg)
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the logged-in profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := sessionStore(cfg)
		if err != nil {
			return err
		}
		u, err := store.Load()
		if errors.Is(err, session.ErrNoSession) {
			return fmt.Errorf("not logged in: run safebites login")
		}
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(u)
		}
		fmt.Printf("User ID:   %s\n", u.UserID)
		fmt.Printf("Name:      %s\n", u.Name)
		fmt.Printf("Age:       %s\n", u.Age)
		fmt.Printf("Diet:      %s\n", u.DietPreference)
		if p := u.Profile(); !p.IsEmpty() {
			fmt.Printf("Allergies: %s\n", p)
		} else {
			fmt.Println("Allergies: none listed")
		}
		return nil
	},
}

// passwordFlag returns --password or the first line of stdin.
func passwordFlag(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("password"); p != "" {
		return p, nil
	}
	return readLine(cmd.InOrStdin())
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	loginCmd.Flags().String("password", "", "account password (default: read from stdin)")

	signupCmd.Flags().String("password", "", "account password (default: read from stdin)")
	signupCmd.Flags().String("name", "", "display name")
	signupCmd.Flags().String("age", "", "age")
	signupCmd.Flags().String("allergy", "", `allergies, comma-separated (e.g. "Milk, Peanut")`)
	signupCmd.Flags().String("diet", "", "diet preference (e.g. veg, vegan, non-veg)")

	profileCmd.Flags().Bool("json", false, "output the profile as JSON")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, profileCmd)
}
