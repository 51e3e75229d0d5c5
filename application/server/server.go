package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/spymsg/spymsg-go/application"
	"github.com/spymsg/spymsg-go/circuit"
	"github.com/spymsg/spymsg-go/crypto/hasher"
	_ "github.com/spymsg/spymsg-go/crypto/hasher/poseidon"
	_ "github.com/spymsg/spymsg-go/crypto/hasher/shake"
	"github.com/spymsg/spymsg-go/protocol"
	"github.com/spymsg/spymsg-go/protocol/directory"
	"github.com/spymsg/spymsg-go/protocol/registry"
	"github.com/spymsg/spymsg-go/storage/kv"
	"github.com/spymsg/spymsg-go/storage/kv/badgerkv"
	"github.com/spymsg/spymsg-go/storage/kv/leveldbkv"
)

// ProverNone disables the proof backend.
const ProverNone = "none"

// A RegistryServer represents a flag registry server.
// It wraps a Directory with a network layer which
// handles requests/responses and their encoding/decoding.
// A RegistryServer also supports concurrent handling of requests:
// reads run in parallel while input messages are applied one at a
// time.
type RegistryServer struct {
	*application.ServerBase
	dir     *directory.Directory
	db      kv.DB
	backend *circuit.Backend
}

// openStorage opens the key-value store conf selects.
func openStorage(conf *StorageConfig) (kv.DB, error) {
	switch conf.Backend {
	case StorageLevelDB:
		return leveldbkv.OpenDB(conf.Path)
	case StorageBadger:
		return badgerkv.OpenDB(conf.Path)
	case StorageMemory:
		return leveldbkv.OpenMemDB()
	}
	return nil, fmt.Errorf("Unknown storage backend %q", conf.Backend)
}

// NewRegistryServer creates a new registry server from conf.
// It resumes the registry persisted in the configured storage, or
// initializes a new one from the roster if the storage is empty.
func NewRegistryServer(conf *Config) (*RegistryServer, error) {
	// determine this server's request permissions
	perms := make(map[*application.ServerAddress]map[int]bool)
	for _, addr := range conf.Addresses {
		perms[addr.ServerAddress] = map[int]bool{
			protocol.CheckMsgType:   true,
			protocol.CommitmentType: true,
			protocol.WitnessType:    true,
			protocol.EventsType:     true,
			protocol.InputMsgType:   addr.AllowInput,
		}
	}
	writes := map[int]bool{protocol.InputMsgType: true}

	h, err := hasher.Hasher(conf.Hasher)
	if err != nil {
		return nil, err
	}
	sb, err := application.NewServerBase(conf.ServerBaseConfig, "Listen",
		perms, writes)
	if err != nil {
		return nil, err
	}

	server := &RegistryServer{ServerBase: sb}
	cfg := registry.Config{
		Hasher:  h,
		Metrics: registry.NewMetrics(sb.Metrics()),
	}
	if conf.Prover != ProverNone {
		server.backend, err = circuit.NewBackend(conf.Prover)
		if err != nil {
			return nil, err
		}
		cfg.Backend = server.backend
	}

	server.db, err = openStorage(conf.Storage)
	if err != nil {
		return nil, err
	}
	cfg.Store = registry.NewStore(server.db)

	server.dir, err = directory.Open(cfg)
	if errors.Is(err, protocol.ErrNotInitialized) {
		server.dir, err = server.initDirectory(cfg, conf)
	}
	if err != nil {
		server.db.Close()
		return nil, err
	}
	server.dir.Registry().OnEvent(server.logEvent)
	return server, nil
}

func (server *RegistryServer) initDirectory(cfg registry.Config, conf *Config) (
	*directory.Directory, error) {
	roster, err := application.LoadRoster(conf.RosterPath, conf.Encoding)
	if err != nil {
		return nil, err
	}
	dir, err := directory.New(cfg, roster.Records)
	if err != nil {
		return nil, err
	}
	server.Logger().Info("Initialized registry",
		"members", len(roster.Records),
		"commitment", dir.Commitment().String())
	return dir, nil
}

func (server *RegistryServer) logEvent(ev *protocol.Event) {
	server.Logger().Info("Committed input message",
		"seq", ev.Seq,
		"index", ev.Index,
		"payload", ev.Payload.String(),
		"commitment", ev.Commitment.String())
}

// Directory returns the server's directory.
func (server *RegistryServer) Directory() *directory.Directory {
	return server.dir
}

// HandleRequests validates the request message and passes it to the
// appropriate operation handler according to the request type.
func (server *RegistryServer) HandleRequests(ctx context.Context,
	req *protocol.Request) *protocol.Response {
	var res *protocol.Response
	var err error
	switch req.Type {
	case protocol.InputMsgType:
		if msg, ok := req.Request.(*protocol.InputMsgRequest); ok {
			res, err = server.dir.InputMsg(ctx, msg)
			if err != nil {
				server.Logger().Warn("Rejected input message",
					"index", msg.Index,
					"payload", msg.Payload.String(),
					"commitment", msg.Commitment.String(),
					"error", err.Error())
			}
			return res
		}
	case protocol.CheckMsgType:
		if msg, ok := req.Request.(*protocol.CheckMsgRequest); ok {
			res, err = server.dir.CheckMsg(msg)
		}
	case protocol.CommitmentType:
		if msg, ok := req.Request.(*protocol.CommitmentRequest); ok {
			res, err = server.dir.GetCommitment(msg)
		}
	case protocol.WitnessType:
		if msg, ok := req.Request.(*protocol.WitnessRequest); ok {
			res, err = server.dir.Witness(msg)
		}
	case protocol.EventsType:
		if msg, ok := req.Request.(*protocol.EventsRequest); ok {
			res, err = server.dir.Events(msg)
		}
	}
	if res == nil {
		return protocol.NewErrorResponse(protocol.ErrMalformedMessage)
	}
	if err != nil {
		server.Logger().Debug("Request failed", "type", req.Type,
			"error", err.Error())
	}
	return res
}

// Run implements the main functionality of the registry server.
// It listens for all declared connections with corresponding
// permissions, and serves the metrics endpoint if one is configured.
func (server *RegistryServer) Run(addrs []*Address) error {
	if err := server.ServeMetrics(); err != nil {
		return err
	}
	hasInputPerm := false
	for _, addr := range addrs {
		hasInputPerm = hasInputPerm || addr.AllowInput
		if addr.AllowInput {
			server.Verb = "Accepting input messages"
		} else {
			server.Verb = "Listen"
		}
		if err := server.ListenAndHandle(addr.ServerAddress, server.HandleRequests); err != nil {
			return err
		}
	}

	if !hasInputPerm {
		server.Logger().Warn("None of the addresses permit input messages")
	}
	return nil
}

// Shutdown stops the server and closes its storage.
func (server *RegistryServer) Shutdown() error {
	err := server.ServerBase.Shutdown()
	if cerr := server.db.Close(); err == nil {
		err = cerr
	}
	server.Logger().Sync()
	return err
}
