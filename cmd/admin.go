package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sheezylodhi/Scrapper/storage"
)

var adminFlags struct {
	username string
	password string
}

var adminCreateCmd = &cobra.Command{
	Use:   "admin-create",
	Short: "Create or update a dashboard admin account",
	RunE:  runAdminCreate,
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminFlags.username, "username", "", "admin username")
	adminCreateCmd.Flags().StringVar(&adminFlags.password, "password", "", "admin password")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(adminCreateCmd)
}

func runAdminCreate(cmd *cobra.Command, args []string) error {
	if len(adminFlags.password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.NewStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminFlags.password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := store.CreateAdmin(ctx, adminFlags.username, string(hash)); err != nil {
		return err
	}
	log.Info("admin account ready", "username", adminFlags.username)
	return nil
}
