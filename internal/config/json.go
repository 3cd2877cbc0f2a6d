package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	API struct {
		BaseURL        string   `json:"base_url"`
		Token          string   `json:"token"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"api,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Spool struct {
			Dir string `json:"dir"`
		} `json:"spool,omitempty"`
	} `json:"storage,omitempty"`

	HTTP struct {
		Address string `json:"address"`
	} `json:"http,omitempty"`

	Sync struct {
		Interval    Duration `json:"interval"`
		Workers     int      `json:"workers"`
		MaxAttempts int      `json:"max_attempts"`
		BackoffBase Duration `json:"backoff_base"`
		BackoffCap  Duration `json:"backoff_cap"`
	} `json:"sync,omitempty"`

	Uploads struct {
		MaxAttempts   int      `json:"max_attempts"`
		BackoffBase   Duration `json:"backoff_base"`
		BackoffCap    Duration `json:"backoff_cap"`
		PurgeInterval Duration `json:"purge_interval"`
	} `json:"uploads,omitempty"`

	Log struct {
		File  string `json:"file"`
		Level string `json:"level"`
	} `json:"log,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		API: API{
			BaseURL:        jsonCfg.API.BaseURL,
			Token:          jsonCfg.API.Token,
			RequestTimeout: time.Duration(jsonCfg.API.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Spool: Spool{
				Dir: jsonCfg.Storage.Spool.Dir,
			},
		},
		HTTP: HTTP{
			Address: jsonCfg.HTTP.Address,
		},
		Sync: Sync{
			Interval:    time.Duration(jsonCfg.Sync.Interval),
			Workers:     jsonCfg.Sync.Workers,
			MaxAttempts: jsonCfg.Sync.MaxAttempts,
			BackoffBase: time.Duration(jsonCfg.Sync.BackoffBase),
			BackoffCap:  time.Duration(jsonCfg.Sync.BackoffCap),
		},
		Uploads: Uploads{
			MaxAttempts:   jsonCfg.Uploads.MaxAttempts,
			BackoffBase:   time.Duration(jsonCfg.Uploads.BackoffBase),
			BackoffCap:    time.Duration(jsonCfg.Uploads.BackoffCap),
			PurgeInterval: time.Duration(jsonCfg.Uploads.PurgeInterval),
		},
		Log: Log{
			File:  jsonCfg.Log.File,
			Level: jsonCfg.Log.Level,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
