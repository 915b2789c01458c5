package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/zeptools/invoicing-core/billing"
	"github.com/zeptools/invoicing-core/conf"
	"github.com/zeptools/invoicing-core/layout"
	"github.com/zeptools/invoicing-core/ledger"
	"github.com/zeptools/invoicing-core/pdfs"
	"github.com/zeptools/invoicing-core/pdfs/impls/fpdf"
	"github.com/zeptools/invoicing-core/render/flowdoc"
	"github.com/zeptools/invoicing-core/render/pagedoc"
	"github.com/zeptools/invoicing-core/render/personal"
	"github.com/zeptools/invoicing-core/routing"
	"github.com/zeptools/invoicing-core/snapshot"
	"github.com/zeptools/invoicing-core/snapshot/stores/memstore"
	"github.com/zeptools/invoicing-core/snapshot/stores/sqlstore"
	"github.com/zeptools/invoicing-core/web/handlers"
)

const (
	throttleCleanupCycle     = 10 * time.Minute
	throttleCleanupOlderThan = time.Hour
	scratchSweepCycle        = 10 * time.Minute

	invoiceRenderGroup = "invoice-render"
)

func main() {
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	appRoot, err := os.Getwd()
	if err != nil {
		log.Fatalf("[ERROR] resolving app root: %v", err)
	}

	core := &conf.Core[string]{}
	if err = core.BaseInit(appRoot, rootCtx, rootCancel); err != nil {
		log.Fatalf("[ERROR] BaseInit: %v", err)
	}

	if err = core.PrepareKVDatabase(); err != nil {
		log.Fatalf("[ERROR] PrepareKVDatabase: %v", err)
	}
	if err = core.PrepareSQLDatabases(); err != nil {
		log.Fatalf("[ERROR] PrepareSQLDatabases: %v", err)
	}
	if err = core.PrepareWebSessions(); err != nil {
		log.Fatalf("[ERROR] PrepareWebSessions: %v", err)
	}
	if err = core.PrepareIDTokenVerification(); err != nil {
		log.Fatalf("[ERROR] PrepareIDTokenVerification: %v", err)
	}
	if err = core.PrepareScratch(scratchSweepCycle); err != nil {
		log.Fatalf("[ERROR] PrepareScratch: %v", err)
	}
	core.PrepareThrottleBucketStore(throttleCleanupCycle, throttleCleanupOlderThan)
	core.ThrottleBucketStore.SetBucketGroup(invoiceRenderGroup, &conf.InvoiceRenderBucketConf)

	snapshots, err := prepareSnapshotStore(rootCtx, core)
	if err != nil {
		log.Fatalf("[ERROR] preparing snapshot store: %v", err)
	}

	renderers, personalRenderer, err := prepareRenderers(core)
	if err != nil {
		log.Fatalf("[ERROR] preparing renderers: %v", err)
	}

	billingSvc := &billing.Service{
		Profile:     core.Profile,
		Money:       core.Money,
		Ledgers:     ledger.NewStore(core.Tariff),
		Snapshots:   snapshots,
		Renderers:   renderers,
		ActionLocks: core.ActionLocks,
		Scratch:     core.ScratchDir,
	}

	router := handlers.NewRouter(handlers.Handlers{
		Auth: &handlers.AuthHandler{
			Sessions:         core.WebSessionManager,
			IDTokenPublicKey: core.IDTokenPublicKey,
		},
		Items:    &handlers.ItemsHandler{Ledgers: billingSvc.Ledgers},
		Invoices: &handlers.InvoicesHandler{Billing: billingSvc},
		Personal: &handlers.PersonalHandler{Renderer: personalRenderer},
		SessionAuth: &handlers.SessionAuthWrapper{
			Sessions: core.WebSessionManager,
		},
		InvoiceThrottle: &handlers.ThrottleWrapper{
			Buckets: core.ThrottleBucketStore,
			GroupID: invoiceRenderGroup,
		},
	})

	core.PrepareWebService(core.Listen, routing.RecoverWrapper(router))
	defer core.ResourceCleanUp()

	if err = core.StartServices(); err != nil {
		log.Fatalf("[ERROR] StartServices: %v", err)
	}
	if err = core.WaitServicesDone(); err != nil {
		log.Fatalf("[ERROR] service failed: %v", err)
	}
	log.Printf("[INFO] %q shutdown complete", core.AppName)
}

// prepareSnapshotStore picks the SQL-backed store when a "main" SQL database
// is configured, the in-process store otherwise.
func prepareSnapshotStore(ctx context.Context, core *conf.Core[string]) (snapshot.Store, error) {
	client, ok := core.BackendSQLDBClients["main"]
	if !ok {
		log.Println("[INFO] no main SQL database configured. using in-memory snapshot store")
		return memstore.New(), nil
	}
	store, err := sqlstore.New(client, core.SQLDBConfs["main"].Type)
	if err != nil {
		return nil, err
	}
	if err = store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func prepareRenderers(core *conf.Core[string]) (map[string]billing.Renderer, *personal.Renderer, error) {
	footer, err := pagedoc.ParseFooterStyle(core.FooterStyle)
	if err != nil {
		return nil, nil, err
	}
	grid := layout.DefaultGrid(pdfs.LetterSize)
	newCanvas := func(p pdfs.PaperSize) pdfs.Canvas { return fpdf.New(p) }

	htmlRenderer, err := flowdoc.New()
	if err != nil {
		return nil, nil, err
	}
	renderers := map[string]billing.Renderer{
		"pdf":  pagedoc.New(grid, footer, newCanvas),
		"html": htmlRenderer,
	}
	return renderers, personal.New(grid, core.Money, newCanvas), nil
}
