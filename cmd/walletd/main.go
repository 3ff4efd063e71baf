package main

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/yukti-app/walletd/adapters/events"
	"github.com/yukti-app/walletd/adapters/signer"
	"github.com/yukti-app/walletd/adapters/store"
	"github.com/yukti-app/walletd/chain"
	"github.com/yukti-app/walletd/config"
	"github.com/yukti-app/walletd/core"
	"github.com/yukti-app/walletd/ports"
	"github.com/yukti-app/walletd/service"
	"github.com/yukti-app/walletd/state"
	httptransport "github.com/yukti-app/walletd/transport/http"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	wmLogger := watermill.NewStdLogger(false, false)

	// Redis backs both the credential store and the event stream when
	// configured; otherwise everything stays in process.
	var credStore ports.CredentialStore
	var publisher message.Publisher
	if redisURL := config.GetString(config.RedisURLKey); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.WithError(err).Fatal("failed to parse redis URL")
		}
		redisClient := redis.NewClient(opts)

		credStore = store.NewRedisStore(redisClient)
		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			wmLogger,
		)
		if err != nil {
			log.WithError(err).Fatal("failed to create redis publisher")
		}
	} else {
		credStore = store.NewMemoryStore()
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	bridge, err := signer.Dial(dialCtx, config.GetString(config.SignerEndpointKey))
	if err != nil {
		log.WithError(err).Fatal("failed to reach the wallet signer host")
	}
	defer bridge.Close()

	chainClient := chain.New(
		config.GetString(config.RPCEndpointKey),
		chain.WithConfirmTimeout(config.GetConfirmTimeout()),
	)

	stateStore := state.NewStore()
	eventPub := events.NewWatermillPublisher(publisher)

	sessionManager := service.NewSessionManager(
		bridge,
		credStore,
		stateStore,
		eventPub,
		config.GetString(config.ClusterKey),
		core.AppIdentity{
			Name: config.GetString(config.AppNameKey),
			URI:  config.GetString(config.AppURIKey),
			Icon: config.GetString(config.AppIconKey),
		},
	)

	// Pick up a previous session without bothering the user. A stale record
	// is cleaned up here and the UI falls back to a manual connect.
	if reconnected, err := sessionManager.ReconnectIfPossible(context.Background()); err != nil {
		log.WithError(err).Warn("silent reconnection failed")
	} else if reconnected {
		log.Info("restored previous wallet session")
	}

	handlers := httptransport.NewWalletHandlers(
		sessionManager,
		chainClient,
		stateStore,
		eventPub,
		config.GetEscrowProgram(),
	)
	router := httptransport.SetupRouter(handlers)

	listenAddr := config.GetString(config.ListenAddrKey)
	log.WithField("addr", listenAddr).Info("walletd listening")
	if err := router.Run(listenAddr); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
