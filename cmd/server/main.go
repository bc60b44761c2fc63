// Command server is the gateway's process entry point: it loads
// configuration, wires the cache and upstream client, and starts the
// IMAP and SMTP listeners, grounded on the teacher's cmd/server/main.go
// shape (flag-free here since configuration is environment-driven per
// §6, but the same load-then-listen-then-wait structure).
package main

import (
	"context"
	"crypto/tls"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/cache"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/conf"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/imap/server"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/mailresolve"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/smtp"
	"github.com/Transmit-Xmit/xmit-mail-gateway/internal/upstream"
)

func main() {
	cfg := conf.Load()

	imapLog := log.New(os.Stdout, "[imap] ", log.LstdFlags)
	smtpLog := log.New(os.Stdout, "[smtp] ", log.LstdFlags)
	cacheLog := log.New(os.Stdout, "[cache] ", log.LstdFlags)
	upLog := log.New(os.Stdout, "[upstream] ", log.LstdFlags)

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		log.Fatalf("create cache dir %s: %v", cfg.CacheDir, err)
	}

	mgr, err := buildCacheManager(cfg, cacheLog)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}

	upCfg := upstream.DefaultConfig(cfg.APIBase)
	upCfg.Timeout = cfg.APITimeout
	upClient := upstream.NewClient(upCfg, mgr, upLog)

	aliases := mailresolve.NewAliases(cfg.FolderAliases)

	tlsConfig := loadTLSConfig(cfg)
	if tlsConfig == nil && !cfg.Development {
		log.Fatal("TLS_KEY_PATH/TLS_CERT_PATH are required outside development")
	}

	imapSrv := server.NewServer(upClient, aliases, cfg, imapLog, tlsConfig)
	smtpSrv := smtp.NewServer(upClient, cfg, smtpLog, tlsConfig)

	stop := make(chan struct{})
	go mgr.RunPruner(stop)

	go func() {
		addr := ":" + strconv.Itoa(cfg.IMAPPort)
		wrapTLS := tlsConfig != nil && !cfg.Development
		if err := imapSrv.ListenAndServe(addr, wrapTLS); err != nil {
			log.Fatalf("imap listener: %v", err)
		}
	}()

	go func() {
		addr := ":" + strconv.Itoa(cfg.SMTPPort)
		if err := smtpSrv.ListenAndServe(addr); err != nil {
			log.Fatalf("smtp listener: %v", err)
		}
	}()

	log.Printf("xmit mail gateway ready: imap=:%d smtp=:%d api=%s development=%v",
		cfg.IMAPPort, cfg.SMTPPort, cfg.APIBase, cfg.Development)

	waitForShutdown()
	close(stop)
	log.Println("shutting down")
}

// buildCacheManager wires the memory tier and the persistent tier,
// preferring the S3 backend when CACHE_PERSISTENT_BACKEND=s3 is set
// and falling back to local SQLite otherwise, the way the teacher's
// main.go falls back to a local blob store when cfg.BlobStorage is
// disabled.
func buildCacheManager(cfg *conf.Config, logger *log.Logger) (*cache.Manager, error) {
	memCfg := cache.DefaultMemoryTierConfig()
	memCfg.MaxBytes = cfg.CacheMemoryBytes
	memory := cache.NewMemoryTier(memCfg)

	persistCfg := cache.DefaultPersistentTierConfig()
	persistCfg.MaxBytes = cfg.CachePersistentBytes

	var persistent cache.Backend
	if os.Getenv("CACHE_PERSISTENT_BACKEND") == "s3" {
		s3Cfg := cache.S3BackendConfig{
			Enabled:  true,
			Endpoint: os.Getenv("CACHE_S3_ENDPOINT"),
			Bucket:   os.Getenv("CACHE_S3_BUCKET"),
			Region:   os.Getenv("CACHE_S3_REGION"),
			Prefix:   os.Getenv("CACHE_S3_PREFIX"),
		}
		backend, err := cache.NewS3Backend(context.Background(), s3Cfg, filepath.Join(cfg.CacheDir, "blob-index.db"), persistCfg)
		if err != nil {
			return nil, err
		}
		logger.Printf("persistent cache backend: s3 bucket=%s", s3Cfg.Bucket)
		persistent = backend
	} else {
		tier, err := cache.OpenPersistentTier(filepath.Join(cfg.CacheDir, "blobs.db"), persistCfg)
		if err != nil {
			return nil, err
		}
		logger.Printf("persistent cache backend: sqlite %s", cfg.CacheDir)
		persistent = tier
	}

	return cache.NewManager(memory, persistent), nil
}

// loadTLSConfig loads the certificate pair once at startup per §6
// ("TLS contexts are loaded once at startup and shared read-only"),
// returning nil when unconfigured (development, or any deployment that
// terminates TLS upstream of the gateway).
func loadTLSConfig(cfg *conf.Config) *tls.Config {
	if cfg.TLSCertPath == "" || cfg.TLSKeyPath == "" {
		return nil
	}
	cert, err := tls.LoadX509KeyPair(cfg.TLSCertPath, cfg.TLSKeyPath)
	if err != nil {
		log.Fatalf("load TLS material: %v", err)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
}

func waitForShutdown() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
