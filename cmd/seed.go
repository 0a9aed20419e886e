package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chatbot/internal/pkg/mongodb"
	authRepo "chatbot/internal/repository/auth"
	"chatbot/internal/service"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the test user in MongoDB",
	Long: `Create the test login account in MongoDB if it does not exist yet.
An existing account is left untouched.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	flags := seedCmd.Flags()
	flags.String("mongo-uri", "", "MongoDB URI (env: CHATBOT_MONGO_URI)")
	_ = viper.BindPFlag("mongo.uri", flags.Lookup("mongo-uri"))
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg.Mongo.URI == "" {
		return errors.New("mongo.uri is required for seeding")
	}

	client, err := mongodb.New(&cfg.Mongo)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer func() {
		if err := client.Close(ctx); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
	}()

	if err := mongodb.EnsureIndexes(client.Database()); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	// 种子账号不签发 token，密钥不影响结果
	authSvc := service.NewAuthService(authRepo.NewUserRepo(client.Database()), "seed", time.Hour)
	user, created, err := service.SeedTestUser(ctx, authSvc)
	if err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}

	if created {
		log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("test user created")
	} else {
		log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("test user already exists")
	}
	fmt.Printf("Login with %s / %s\n", service.SeedUserEmail, service.SeedUserPassword)
	return nil
}
