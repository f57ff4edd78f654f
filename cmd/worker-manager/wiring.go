package main

import (
	"context"
	"fmt"
	"time"

	"brokerage-portal/internal/common/auth"
	awsclient "brokerage-portal/internal/common/aws"
	"brokerage-portal/internal/common/camunda"
	"brokerage-portal/internal/common/config"
	"brokerage-portal/internal/common/database"
	chttp "brokerage-portal/internal/common/http"
	"brokerage-portal/internal/common/logger"
	"brokerage-portal/internal/common/zoho"
	"brokerage-portal/internal/portal/application"
	"brokerage-portal/internal/portal/documents"
	"brokerage-portal/internal/portal/gateway"
	"brokerage-portal/internal/portal/leads"
	"brokerage-portal/internal/portal/notify"
	"brokerage-portal/internal/portal/onboarding"
	"brokerage-portal/internal/portal/reports"
	"brokerage-portal/internal/portal/search"
	"brokerage-portal/internal/portal/session"
	"brokerage-portal/internal/portal/store"
	"brokerage-portal/internal/portal/wizard"

	createnotification "brokerage-portal/internal/workers/application/create-notification"
	sendnotification "brokerage-portal/internal/workers/application/send-notification"
	startapplication "brokerage-portal/internal/workers/application/start-application"
	submitapplication "brokerage-portal/internal/workers/application/submit-application"
	sessionresolve "brokerage-portal/internal/workers/auth/session-resolve"
	emailsend "brokerage-portal/internal/workers/communication/email-send"
	crmcontactsync "brokerage-portal/internal/workers/crm/crm-contact-sync"
	queryentities "brokerage-portal/internal/workers/data-access/query-entities"
	searchcontacts "brokerage-portal/internal/workers/data-access/search-contacts"
	fileupload "brokerage-portal/internal/workers/documents/file-upload"
	listdocuments "brokerage-portal/internal/workers/documents/list-documents"
	uploaddocument "brokerage-portal/internal/workers/documents/upload-document"
	createlead "brokerage-portal/internal/workers/leads/create-lead"
	leadfollowup "brokerage-portal/internal/workers/leads/lead-follow-up"
	computeriskprofile "brokerage-portal/internal/workers/onboarding/compute-risk-profile"
	wizardstep "brokerage-portal/internal/workers/onboarding/wizard-step"
	accountoverview "brokerage-portal/internal/workers/reports/account-overview"
)

// deps holds the portal services shared by the workers.
type deps struct {
	store        store.Store
	gateways     *gateway.Gateways
	onboarding   *onboarding.Service
	documents    *documents.Service
	files        documents.FileStore
	notifier     *notify.Service
	dispatcher   *notify.Dispatcher
	applications *application.Service
	leads        *leads.Service
	reports      *reports.Service
	sessions     *session.Resolver
	directory    *session.Directory
	contacts     *search.ContactIndex
	crm          *zoho.CRMClient
	email        emailsend.Sender
}

type registration struct {
	taskType string
	handle   camunda.HandlerFunc
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func openStore(cfg *config.Config, pg *database.PostgresClient) (store.Store, error) {
	var s store.Store
	switch cfg.Store.Backend {
	case "postgres":
		if pg == nil {
			return nil, fmt.Errorf("postgres store selected without a connection")
		}
		s = store.NewPostgresStore(pg.DB, cfg.Store.Table)
	case "remote":
		s = store.NewRemoteStore(cfg.Store.RemoteURL, cfg.Store.APIToken, chttp.NewClient(config.GetDuration(cfg.Store.Timeout)))
	case "memory":
		s = store.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	return store.Instrument(cfg.Store.Backend, s), nil
}

func buildDeps(ctx context.Context, cfg *config.Config, pg *database.PostgresClient, rdb *database.RedisClient, es *database.ElasticsearchClient, log logger.Logger) (*deps, error) {
	st, err := openStore(cfg, pg)
	if err != nil {
		return nil, err
	}
	ids := gateway.NewIDGenerator(time.Now)
	gw := gateway.NewGateways(st, ids, time.Now)
	d := &deps{store: st, gateways: gw}

	awsCfg := cfg.Integrations.AWS
	if awsCfg.S3.Enabled {
		s3c, err := awsclient.NewS3Client(ctx, awsCfg.Region, awsCfg.S3.Bucket, awsCfg.S3.Prefix)
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}
		d.files = s3c
	}
	var emailSender notify.EmailSender
	if awsCfg.SES.Enabled {
		sesc, err := awsclient.NewSESClient(ctx, awsCfg.Region)
		if err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
		emailSender = sesc
		d.email = sesc
	}
	var smsSender notify.SMSSender
	if awsCfg.SNS.Enabled {
		snsc, err := awsclient.NewSNSClient(ctx, awsCfg.Region)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		smsSender = snsc
	}

	var mirror documents.FileStore
	if cfg.Documents.MirrorToS3 {
		mirror = d.files
	}
	d.documents = documents.NewService(cfg.Documents, gw.Documents, mirror, nil)

	var indexer leads.Indexer
	if es != nil {
		idx, err := search.NewContactIndex(es.Client, cfg.Database.Elasticsearch.ContactIndex)
		if err != nil {
			return nil, fmt.Errorf("contact index: %w", err)
		}
		d.contacts = idx
		indexer = idx
	}

	d.notifier = notify.NewService(gw.Notifications, ids, nil)
	d.dispatcher = notify.NewDispatcher(emailSender, smsSender, sendnotification.DispatchConfigFrom(cfg))
	d.onboarding = onboarding.NewService(onboarding.Deps{
		Tickets:    gw.Tickets,
		Accounts:   gw.Accounts,
		Notifier:   d.notifier,
		Repository: wizard.NewRedisRepository(rdb.Client, cfg.Wizard.KeyPrefix, seconds(cfg.Wizard.StateTTL)),
		Logger:     log,
	})
	d.applications = application.NewService(gw.Tickets, nil)
	d.leads = leads.NewService(gw, ids, indexer, log, nil)
	d.reports = reports.NewService(gw)

	kc := cfg.Auth.Keycloak
	keycloak := auth.NewKeycloakClient(kc.URL, kc.Realm, kc.ClientID, kc.ClientSecret)
	d.sessions = session.NewResolver(keycloak, rdb.Client, seconds(cfg.Auth.SessionTTL))
	d.directory = session.NewDirectory(keycloak, rdb.Client, seconds(cfg.Auth.SessionTTL))

	d.crm = zoho.NewCRMClient(cfg.Integrations.Zoho.AuthToken, cfg.Integrations.Zoho.BaseURL)
	return d, nil
}

func buildHandlers(cfg *config.Config, d *deps, log logger.Logger) ([]registration, error) {
	crmSync, err := crmcontactsync.NewHandler(crmcontactsync.HandlerOptions{
		AppConfig: cfg,
		CRM:       d.crm,
		Gateways:  d.gateways,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}

	regs := []registration{
		{computeriskprofile.TaskType, computeriskprofile.NewHandler(cfg, d.gateways.RiskProfiles, log).Handle},
		{wizardstep.TaskType, wizardstep.NewHandler(cfg, d.onboarding, log).Handle},
		{uploaddocument.TaskType, uploaddocument.NewHandler(cfg, d.documents, log).Handle},
		{listdocuments.TaskType, listdocuments.NewHandler(cfg, d.documents, log).Handle},
		{fileupload.TaskType, fileupload.NewHandler(cfg, d.files, log).Handle},
		{createnotification.TaskType, createnotification.NewHandler(cfg, d.notifier, log).Handle},
		{sendnotification.TaskType, sendnotification.NewHandler(cfg, d.dispatcher, d.directory, log).Handle},
		{emailsend.TaskType, emailsend.NewHandler(cfg, d.email, log).Handle},
		{createlead.TaskType, createlead.NewHandler(cfg, d.leads, log).Handle},
		{startapplication.TaskType, startapplication.NewHandler(cfg, d.leads, log).Handle},
		{leadfollowup.TaskType, leadfollowup.NewHandler(cfg, d.leads, log).Handle},
		{submitapplication.TaskType, submitapplication.NewHandler(cfg, d.applications, log).Handle},
		{queryentities.TaskType, queryentities.NewHandler(cfg, d.store, log).Handle},
		{crmcontactsync.TaskType, crmSync.Handle},
		{accountoverview.TaskType, accountoverview.NewHandler(cfg, d.reports, log).Handle},
		{sessionresolve.TaskType, sessionresolve.NewHandler(cfg, d.sessions, log).Handle},
	}
	if d.contacts != nil {
		regs = append(regs, registration{searchcontacts.TaskType, searchcontacts.NewHandler(cfg, d.contacts, log).Handle})
	}
	return regs, nil
}
