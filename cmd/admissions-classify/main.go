package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/mikey/admissions-mail-filter/internal/core"
	"github.com/mikey/admissions-mail-filter/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *di.CLIFlags, logger *zap.Logger, service *core.FilterService) error {
	defer logger.Sync()

	// Read email from file or stdin
	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", flags.InputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	// Parse email
	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}

	email := &core.Email{
		Subject: msg.Header.Get("Subject"),
		Body:    string(bodyBytes),
		From:    msg.Header.Get("From"),
		To:      msg.Header.Get("To"),
		Cc:      msg.Header.Get("Cc"),
	}
	if t, err := mail.ParseDate(msg.Header.Get("Date")); err == nil {
		email.Date = t
	}

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("To: %s\n", email.To)
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))

	// Classify
	startTime := time.Now()
	result := service.Classify(context.Background(), email)
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Pertains: %t\n", result.Pertains)
	fmt.Printf("Confidence: %.4f\n", result.Confidence)
	fmt.Printf("Reason: %s\n", result.Reason)
	fmt.Printf("Matched rules: %s\n", strings.Join(result.MatchedRules, ", "))
	fmt.Printf("Processing time: %v\n", duration)

	return nil
}
