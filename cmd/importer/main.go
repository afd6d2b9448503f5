// Command importer is the operator tool for data that does not come in
// through the API: bulk player rosters from CSV, and the initial admin
// account a fresh install needs before anyone can log in.
package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/courtside/volleytrack/config"
	"github.com/courtside/volleytrack/db"
	"github.com/courtside/volleytrack/repositories"
	"github.com/courtside/volleytrack/services"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	root := &cobra.Command{
		Use:   "importer",
		Short: "Operator tooling: bulk player import and admin bootstrap",
	}
	root.AddCommand(playersCommand(logger))
	root.AddCommand(adminCommand(logger))

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func playersCommand(logger *slog.Logger) *cobra.Command {
	var (
		filePath string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "players",
		Short: "Bulk-import players from a CSV file",
		Long: `Reads rows of name, jersey_number (optional), jersey_name (optional).
A header row is detected and skipped. Rows are imported one by one with
the same validation as the /api/players/import endpoint; failures are
reported per row and never roll back the rows that succeeded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := readPlayerCSV(filePath)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return fmt.Errorf("%s contains no player rows", filePath)
			}

			if dryRun {
				logger.Info("dry run, nothing written", slog.Int("rows", len(rows)))
				for _, row := range rows {
					fmt.Printf("would import: %s\n", row.Name)
				}
				return nil
			}

			dbConn, err := connect()
			if err != nil {
				return err
			}
			defer dbConn.Close()

			playerService := services.NewPlayerService(repositories.NewPostgresPlayerRepository(dbConn))
			result, err := playerService.BulkImport(cmd.Context(), rows)
			if err != nil {
				return err
			}

			logger.Info("import finished",
				slog.Int("succeeded", result.Succeeded),
				slog.Int("failed", result.Failed),
			)
			for _, rowErr := range result.Errors {
				logger.Warn("row skipped", slog.String("reason", rowErr))
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d of %d rows failed", result.Failed, result.Succeeded+result.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "path to the players CSV file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without writing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func adminCommand(logger *slog.Logger) *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create an admin user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbConn, err := connect()
			if err != nil {
				return err
			}
			defer dbConn.Close()

			authService := services.NewAuthService(
				repositories.NewPostgresUserRepository(dbConn),
				repositories.NewPostgresTeamRepository(dbConn),
				repositories.NewPostgresTrackerLogRepository(dbConn),
			)
			user, err := authService.CreateAdmin(cmd.Context(), email, name, password)
			if err != nil {
				return err
			}

			logger.Info("admin user created", slog.Int("id", user.ID), slog.String("email", user.Email))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func connect() (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		return nil, err
	}
	if err = db.Migrate(dbConn); err != nil {
		dbConn.Close()
		return nil, err
	}
	return dbConn, nil
}

func readPlayerCSV(path string) ([]services.PlayerInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // jersey columns are optional

	var rows []services.PlayerInput
	for lineNo := 1; ; lineNo++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if len(record) == 0 {
			continue
		}

		name := strings.TrimSpace(record[0])
		if lineNo == 1 && strings.EqualFold(name, "name") {
			continue
		}
		if name == "" {
			continue
		}

		row := services.PlayerInput{Name: name}
		if len(record) > 1 && strings.TrimSpace(record[1]) != "" {
			number, convErr := strconv.Atoi(strings.TrimSpace(record[1]))
			if convErr != nil {
				return nil, fmt.Errorf("line %d: jersey_number %q is not a number", lineNo, record[1])
			}
			row.JerseyNumber = &number
		}
		if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
			jerseyName := strings.TrimSpace(record[2])
			row.JerseyName = &jerseyName
		}
		rows = append(rows, row)
	}
	return rows, nil
}
