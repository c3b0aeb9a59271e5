package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Addr     string   `koanf:"addr"`
	Frontend Frontend `koanf:"frontend"`
	Store    Store    `koanf:"store"`
	DevClock DevClock `koanf:"devclock"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

// Store selects the persistence backend. "local" keeps everything in the
// on-device SQLite database; "firestore" and "postgres" add a remote store
// for the expenses and savings collections, with the local database retained
// as read/write fallback and as the home of budgets and rollover markers.
type Store struct {
	Backend   string    `koanf:"backend"`
	SQLite    SQLite    `koanf:"sqlite"`
	Firestore Firestore `koanf:"firestore"`
	Postgres  Postgres  `koanf:"postgres"`
}

type SQLite struct {
	Path string `koanf:"path"`
}

type Firestore struct {
	ProjectID string `koanf:"projectid"`
	// CredentialsFile points at a service account key JSON. CredentialsJSON
	// takes precedence when both are set.
	CredentialsFile string `koanf:"credentialsfile"`
	CredentialsJSON string `koanf:"credentialsjson"`
}

type Postgres struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// DevClock gates the simulated-time control surface. It must stay disabled in
// production deployments; the routes are not registered at all when off.
type DevClock struct {
	Enabled bool `koanf:"enabled"`
}

const (
	BackendLocal     = "local"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
)

func (s Store) ValidBackend() bool {
	switch s.Backend {
	case BackendLocal, BackendFirestore, BackendPostgres:
		return true
	default:
		return false
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Addr: ":8184",
		Frontend: Frontend{
			Enabled: true,
		},
		Store: Store{
			Backend: BackendLocal,
			SQLite: SQLite{
				Path: "./data/bachat.db",
			},
			Postgres: Postgres{
				Host:   "localhost",
				Port:   5432,
				User:   "bachat",
				Name:   "bachat",
				Schema: "bachat",
			},
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "BACHAT_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "BACHAT_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
