package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/automator-io/admin-service/config"
	"github.com/automator-io/admin-service/pkg/helpers"
	"github.com/automator-io/admin-service/pkg/mailer"
)

// The email worker drains the transactional email queue and delivers via
// Mailgun. Malformed messages are dropped; delivery failures are requeued.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)

	if !cfg.MailSendEnabled {
		log.Println("MAIL_SEND_ENABLED=false; email worker disabled (no real emails will be sent)")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		log.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		log.Fatalf("amqp connect: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	ctx := context.Background()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			var job mailer.EmailJob
			if err := json.Unmarshal(msg.Body, &job); err != nil {
				logger.WithError(err).Warn("dropping malformed email job")
				_ = msg.Nack(false, false)
				continue
			}

			subject, text := mailer.Compose(&job)
			if err := mg.Send(ctx, job.To, subject, text, ""); err != nil {
				logger.WithError(err).WithField("to", job.To).Error("send failed, requeueing")
				_ = msg.Nack(false, true)
				continue
			}

			logger.WithField("to", job.To).WithField("kind", job.Kind).Info("email sent")
			_ = msg.Ack(false)
		}
	}()

	logger.Infof("email worker consuming from %q", cfg.RabbitMQEmailQueue)
	select {
	case <-stop:
		logger.Info("shutting down email worker")
		consumer.Close()
		<-done
	case <-done:
		logger.Warn("delivery channel closed, exiting")
	}
}
