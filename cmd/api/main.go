package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/restriden/simpli-immo-sub002/config"
	"github.com/restriden/simpli-immo-sub002/internal/infra/database"
	"github.com/restriden/simpli-immo-sub002/internal/infra/http/handlers"
	"github.com/restriden/simpli-immo-sub002/internal/infra/integration/extractor"
	"github.com/restriden/simpli-immo-sub002/internal/infra/integration/gohighlevel"
	"github.com/restriden/simpli-immo-sub002/internal/infra/mail"
	"github.com/restriden/simpli-immo-sub002/internal/infra/queue"
	"github.com/restriden/simpli-immo-sub002/internal/infra/storage"
	"github.com/restriden/simpli-immo-sub002/internal/infra/worker"
	"github.com/restriden/simpli-immo-sub002/internal/usecase"
)

func main() {
	godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("❌ Could not load config: %v", err)
	}

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer db.Close()

	// RabbitMQ is optional. Without it the makler notification fan-out is
	// skipped; everything else keeps working.
	var rabbitMQ *queue.RabbitMQ
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("❌ RabbitMQ connection failed: %v", err)
		}
		defer rabbitMQ.Close()
	} else {
		log.Println("⚠️ RABBITMQ_URL not set, notification fan-out disabled")
	}

	// 1. Repositories
	leadRepo := database.NewLeadRepository(db)
	messageRepo := database.NewMessageRepository(db)
	connectionRepo := database.NewConnectionRepository(db)

	// 2. Gateways and adapters
	crmClient := gohighlevel.NewClient(cfg.GHLBaseURL)

	var uploader usecase.MediaUploader
	var docStore handlers.DocumentUploader
	s3Service, err := storage.NewS3Service(storage.S3Config{
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		Bucket:    cfg.S3Bucket,
		BucketURL: cfg.S3BucketURL,
	})
	if err != nil {
		log.Printf("⚠️ S3 storage disabled: %v", err)
	} else {
		uploader = s3Service
		docStore = s3Service
	}

	var producer usecase.QueueProducerInterface
	if rabbitMQ != nil {
		producer = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)
	}

	var mailSender *mail.EmailSender
	if cfg.SMTPHost != "" && cfg.NotifyEmail != "" {
		mailSender = mail.NewEmailSender(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword,
			cfg.MailFrom, cfg.NotifyEmail,
		)
	}

	var analyzer handlers.DocumentAnalyzer
	if cfg.ExtractorBaseURL != "" && cfg.ExtractorAPIKey != "" {
		analyzer = extractor.NewClient(cfg.ExtractorBaseURL, cfg.ExtractorAPIKey, cfg.ExtractorModel)
	}

	// 3. Queue worker (consumes notifications, mails the backoffice)
	if rabbitMQ != nil {
		var sender queue.NotificationSender
		if mailSender != nil {
			sender = mailSender
		}
		notificationWorker := queue.NewWorker(rabbitMQ.Ch, sender)
		go notificationWorker.Start(queue.QueueName)
	}

	// 4. Delivery status reconciler
	reconciler := worker.NewStatusReconciler(messageRepo, time.Duration(cfg.ReconcileIntervalSeconds)*time.Second)
	go reconciler.Start(context.Background())

	// 5. UseCases
	createContactUC := usecase.NewCreateContactUseCase(leadRepo, connectionRepo, crmClient)
	sendMediaUC := usecase.NewSendMediaUseCase(leadRepo, messageRepo, connectionRepo, crmClient, uploader)
	workflowUC := usecase.NewWorkflowActionUseCase(leadRepo, producer)

	// 6. Handlers
	var rabbitConn *amqp.Connection
	if rabbitMQ != nil {
		rabbitConn = rabbitMQ.Conn
	}

	r := newRouter(routerDeps{
		Contact:  handlers.NewContactHandler(createContactUC),
		Media:    handlers.NewMediaHandler(sendMediaUC),
		Workflow: handlers.NewWorkflowHandler(workflowUC),
		Extract:  handlers.NewExtractHandler(docStore, analyzer),
		Health:   handlers.NewHealthHandler(db, rabbitConn, cfg.GHLBaseURL),
	})

	addr := ":" + cfg.ServerPort
	log.Printf("🔥 Simpli Immo sync API running on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("❌ Server stopped: %v", err)
	}
}
