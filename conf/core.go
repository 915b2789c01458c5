package conf

import (
	"context"
	"crypto/rsa"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/zeptools/invoicing-core/billing"
	"github.com/zeptools/invoicing-core/db/kvdb"
	"github.com/zeptools/invoicing-core/db/kvdb/impls/redis"
	"github.com/zeptools/invoicing-core/db/sqldb"
	_ "github.com/zeptools/invoicing-core/db/sqldb/impls/mysql" // register "mysql" factory
	_ "github.com/zeptools/invoicing-core/db/sqldb/impls/pgsql" // register "pgsql" factory
	"github.com/zeptools/invoicing-core/money"
	"github.com/zeptools/invoicing-core/pricing"
	"github.com/zeptools/invoicing-core/sec"
	"github.com/zeptools/invoicing-core/storages/scratch"
	"github.com/zeptools/invoicing-core/svc"
	"github.com/zeptools/invoicing-core/throttle"
	"github.com/zeptools/invoicing-core/web"
	"github.com/zeptools/invoicing-core/web/session"
)

// Core - common config
// B = Throttle BucketID Type _ e.g. string, int64, etc
type Core[B comparable] struct {
	AppName     string          `json:"app_name"`
	Listen      string          `json:"listen"` // HTTP Server Listen IP:PORT Address
	Host        string          `json:"host"`   // HTTP Host. Can be used to generate public url endpoints
	Profile     billing.Profile `json:"profile"`
	Tariff      pricing.Tariff  `json:"tariff"`
	Money       money.Formatter `json:"money"`
	FooterStyle string          `json:"footer_style"` // "plain" or "grouped"
	ScratchRoot string          `json:"scratch_root"` // empty disables the scratch copy of artifacts
	ScratchTTL  int             `json:"scratch_ttl"`  // seconds

	AppRoot             string                   `json:"-"` // Filled from compiled paths
	RootCtx             context.Context          `json:"-"` // Global Context with RootCancel
	RootCancel          context.CancelFunc       `json:"-"` // CancelFunc for RootCtx
	WebService          *web.Service             `json:"-"` // PrepareWebService
	ThrottleBucketStore *throttle.BucketStore[B] `json:"-"` // PrepareThrottleBucketStore
	ScratchDir          *scratch.Dir             `json:"-"` // PrepareScratch
	ScratchSweeper      *scratch.Sweeper         `json:"-"` // PrepareScratch
	ActionLocks         *sync.Map                `json:"-"` // map[string]struct{}
	BackendHttpClient   *http.Client             `json:"-"` // for requests to external apis
	KVDBConf            kvdb.Conf                `json:"-"` // loadKVDBConf
	BackendKVDBClient   kvdb.Client              `json:"-"` // prepareKVDBClient
	SQLDBConfs          map[string]*sqldb.Conf   `json:"-"` // loadSQLDBConfs
	BackendSQLDBClients map[string]sqldb.Client  `json:"-"` // prepareSQLDBClients
	WebSessionManager   *session.Manager         `json:"-"` // PrepareWebSessions
	IDTokenPublicKey    *rsa.PublicKey           `json:"-"` // PrepareIDTokenVerification

	services []svc.Service // Services to Manage
	done     chan error
}

// BaseInit - 1st step for initialization
// 1. set AppRoot
// 2. load config/.core.json file
// 3. prepare base fields
// 4. Start ShutdownSignalListener
func (c *Core[B]) BaseInit(appRoot string, rootCtx context.Context, rootCancel context.CancelFunc) error {
	c.AppRoot = appRoot
	envFilePath := filepath.Join(appRoot, "config", ".core.json")
	envBytes, err := os.ReadFile(envFilePath) // ([]byte, error)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(envBytes, c); err != nil {
		return err
	}
	c.RootCtx = rootCtx
	c.RootCancel = rootCancel
	c.prepareDefaultFeatures()
	c.startShutdownSignalListener()
	return nil
}

func (c *Core[B]) prepareDefaultFeatures() {
	c.ActionLocks = &sync.Map{}
	c.BackendHttpClient = &http.Client{}
	if c.Tariff == (pricing.Tariff{}) {
		c.Tariff = pricing.DefaultTariff()
	}
	if c.Money == (money.Formatter{}) {
		c.Money = money.DefaultFormatter()
	}
}

func (c *Core[B]) AddService(s svc.Service) {
	log.Printf("[INFO] adding service: %s", s.Name())
	c.services = append(c.services, s)
	log.Printf("[INFO] total services: %d", len(c.services))
}

func (c *Core[B]) StartServices() error {
	c.done = make(chan error, len(c.services))
	for _, s := range c.services {
		err := s.Start()
		if err != nil {
			return err
		}
		go func(s svc.Service) {
			err := <-s.Done()
			c.done <- err
		}(s) // pass the loop var to the param. otherwise, they are captured inside goroutine lazily
	}
	return nil
}

func (c *Core[B]) WaitServicesDone() error {
	for i := 0; i < len(c.services); i++ {
		if err := <-c.done; err != nil {
			return err
		}
	}
	return nil
}

func (c *Core[B]) StopServices() {
	for _, s := range c.services {
		s.Stop()
	}
}

var once sync.Once

func (c *Core[B]) startShutdownSignalListener() {
	once.Do(func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			log.Printf("[INFO] got signal [%s]. shutting down app [%s] ...", sig, c.AppName)
			c.RootCancel() // broadcast to all child services via Context.Done()
		}()
	})
	log.Printf("[INFO][CORE] shutdown signal listener started")
}

func (c *Core[B]) PrepareWebService(addr string, router http.Handler) {
	c.WebService = web.NewService(c.RootCtx, addr, router)
	c.AddService(c.WebService)
}

func (c *Core[B]) PrepareThrottleBucketStore(cleanupCycle time.Duration, cleanupOlderThan time.Duration) {
	c.ThrottleBucketStore = throttle.NewBucketStore[B](c.RootCtx, cleanupCycle, cleanupOlderThan)
	c.AddService(c.ThrottleBucketStore)
}

// PrepareScratch prepares the scratch directory for generated artifacts
// plus the sweeper service that expires them.
// No-op when ScratchRoot is not configured.
func (c *Core[B]) PrepareScratch(sweepCycle time.Duration) error {
	if c.ScratchRoot == "" {
		return nil
	}
	ttl := time.Duration(c.ScratchTTL) * time.Second
	dir, err := scratch.New(c.ScratchRoot, ttl)
	if err != nil {
		return err
	}
	c.ScratchDir = dir
	c.ScratchSweeper = scratch.NewSweeper(c.RootCtx, dir, sweepCycle)
	c.AddService(c.ScratchSweeper)
	return nil
}

func (c *Core[B]) PrepareKVDatabase() error {
	// Load KV Database Config File
	err := c.loadKVDBConf()
	if err != nil {
		return err
	}
	if err = c.prepareKVDBClient(); err != nil {
		return err
	}
	return nil
}

func (c *Core[B]) loadKVDBConf() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".kv-databases.json")
	confBytes, err := os.ReadFile(confFilePath) // ([]byte, error)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(confBytes, &c.KVDBConf); err != nil {
		return err
	}
	return nil
}

func (c *Core[B]) prepareKVDBClient() error {
	switch c.KVDBConf.Type {
	case "redis":
		c.BackendKVDBClient = &redis.Client{Conf: &c.KVDBConf}
		if err := c.BackendKVDBClient.Init(); err != nil {
			return err
		}
	// case "memcached"
	default:
		return errors.New("unsupported key-value database type")
	}
	return nil
}

func (c *Core[B]) loadSQLDBConfs() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".sql-databases.json")
	confBytes, err := os.ReadFile(confFilePath) // ([]byte, error)
	if err != nil {
		return err
	}
	c.SQLDBConfs = make(map[string]*sqldb.Conf)
	if err = json.Unmarshal(confBytes, &c.SQLDBConfs); err != nil {
		return err
	}
	return nil
}

// prepareSQLDBClients - Build & Init SQL DB Clients
// Use after loadSQLDBConfs
// Implementations register themselves via the blank imports above.
func (c *Core[B]) prepareSQLDBClients() error {
	c.BackendSQLDBClients = make(map[string]sqldb.Client)
	for dbName, sqlDBConf := range c.SQLDBConfs {
		dbClient, err := sqldb.New(sqlDBConf)
		if err != nil {
			return err
		}
		if err = dbClient.Init(); err != nil {
			return err
		}
		c.BackendSQLDBClients[dbName] = dbClient
	}
	return nil
}

// PrepareSQLDatabases for SQL DB Clients
func (c *Core[B]) PrepareSQLDatabases() error {
	// Load SQL Databases Config File
	err := c.loadSQLDBConfs()
	if err != nil {
		return err
	}
	if len(c.SQLDBConfs) == 0 {
		return nil
	}
	return c.prepareSQLDBClients()
}

// PrepareWebSessions prepares WebSessionManager
// Prerequisite: BackendKVDBClient
func (c *Core[B]) PrepareWebSessions() error {
	confFilePath := filepath.Join(c.AppRoot, "config", ".web-session.json")
	confBytes, err := os.ReadFile(confFilePath) // ([]byte, error)
	if err != nil {
		return err
	}
	if c.BackendKVDBClient == nil {
		return errors.New("backend KVDB client not ready")
	}
	mgr := &session.Manager{
		AppName:           c.AppName,
		BackendKVDBClient: c.BackendKVDBClient,
	}
	if err = json.Unmarshal(confBytes, &mgr.Conf); err != nil {
		return err
	}
	// Web Login Session Cipher
	cipher, err := sec.NewXChaCha20Poly1305CipherBase64([]byte(mgr.Conf.EncryptionKey))
	if err != nil {
		return fmt.Errorf("NewXChaCha20Poly1305Cipher: %v", err)
	}
	mgr.Cipher = cipher

	c.WebSessionManager = mgr
	return nil
}

// PrepareIDTokenVerification loads the RSA public key that signed-in id
// tokens are verified against.
func (c *Core[B]) PrepareIDTokenVerification() error {
	keyFilePath := filepath.Join(c.AppRoot, "config", "id_token_public.pem")
	keyBytes, err := os.ReadFile(keyFilePath)
	if err != nil {
		return err
	}
	pub, err := sec.LoadRSAPublicKey(keyBytes)
	if err != nil {
		return fmt.Errorf("load id token public key: %w", err)
	}
	c.IDTokenPublicKey = pub
	return nil
}

func (c *Core[B]) ResourceCleanUp() {
	log.Println("[INFO] App Resource Cleaning Up...")
	if c.BackendKVDBClient != nil {
		if err := c.BackendKVDBClient.Close(); err != nil {
			log.Println("[ERROR] Failed to close KV database client")
		}
	}
	for name, sqlDBClient := range c.BackendSQLDBClients {
		dbType := c.SQLDBConfs[name].Type
		log.Printf("[INFO][%s] Closing %q SQL DB client", dbType, name)
		err := sqlDBClient.Close()
		if err != nil {
			log.Printf("[ERROR][%s] Failed to close %q SQL DB client", dbType, name)
		} else {
			log.Printf("[INFO][%s] %q SQL DB client closed", dbType, name)
		}
	}
	log.Println("[INFO] App Resource Cleanup Complete")
}
