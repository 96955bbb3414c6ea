/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/evoluciona-hipotecaria/apiserver/config"
	"github.com/evoluciona-hipotecaria/apiserver/internal/db"
	"github.com/evoluciona-hipotecaria/apiserver/internal/rut"
	"github.com/evoluciona-hipotecaria/apiserver/internal/store"
	"github.com/evoluciona-hipotecaria/apiserver/types"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// seedCmd creates the initial admin account. Running it twice is a no-op.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the initial admin user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		adminRut := rut.Normalize(os.Getenv("ADMIN_RUT"))
		if adminRut == "" {
			return errors.New("ADMIN_RUT is required")
		}
		if !rut.IsValidFormat(adminRut) || !rut.IsValidCheckDigit(adminRut) {
			return fmt.Errorf("ADMIN_RUT %q is not a valid RUT", adminRut)
		}
		password := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))
		if password == "" {
			return errors.New("ADMIN_PASSWORD is required")
		}

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		users := store.NewUserRepository(dbConn)
		if _, err := users.GetByRut(cmd.Context(), adminRut); err == nil {
			fmt.Printf("admin %s already exists\n", adminRut)
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		admin, err := users.Create(cmd.Context(), types.User{
			Rut:          adminRut,
			PasswordHash: string(hash),
			Rol:          types.RoleAdmin,
		})
		if err != nil {
			return err
		}
		fmt.Printf("admin %s created (%s)\n", admin.Rut, admin.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
