// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Config command implementation.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display the effective configuration
//   get <key>           Print one value
//   set <key> <value>   Change one value in the file
//   path                Show the configuration file path
//
// Examples:
//   folio config set profile.name "Ada Lovelace"
//   folio config set ui.theme light
//   folio config set chat.typing_max_ms 1500
//   folio config get cloud.model --json

package cli

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/folio/internal/config"
)

const configUsage = "folio config show|get KEY|set KEY VALUE|path"

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) error {
	path, err := resolveConfigPath(args)
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(args, path)
	case "get":
		return handleConfigGet(args, path)
	case "set":
		return handleConfigSet(args, path)
	case "path":
		return handleConfigPath(args, path)
	default:
		return ErrUnknownSubcommand("config", args.Subcommand, configUsage)
	}
}

func resolveConfigPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPath()
}

// effectiveConfig is the configuration a command would run with: file,
// .env and environment.
func effectiveConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	return config.LoadFromPath(path)
}

// handleConfigShow prints every key grouped by section.
func handleConfigShow(args Args, path string) error {
	cfg, err := effectiveConfig(path)
	if err != nil {
		return err
	}

	if args.JSON {
		values := make(map[string]interface{}, len(config.AllKeys()))
		for _, key := range config.AllKeys() {
			v, err := cfg.Get(key)
			if err != nil {
				return err
			}
			values[key] = maskIfSecret(key, v)
		}
		return NewJSONResponse("config show", map[string]interface{}{
			"path":   path,
			"values": values,
		}).Print()
	}

	fmt.Fprintln(stdout, TitleStyle.Render("folio configuration"))
	fmt.Fprintln(stdout, DimStyle.Render(path))

	section := ""
	for _, key := range config.AllKeys() {
		sec, name, _ := strings.Cut(key, ".")
		if sec != section {
			section = sec
			fmt.Fprintln(stdout)
			fmt.Fprintln(stdout, "["+sec+"]")
		}
		v, err := cfg.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, "  "+RenderLabel(name, fmt.Sprint(maskIfSecret(key, v))))
	}
	return nil
}

// handleConfigGet prints one value.
func handleConfigGet(args Args, path string) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "folio config get cloud.model")
	}
	cfg, err := effectiveConfig(path)
	if err != nil {
		return err
	}
	v, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return &ValidationError{Field: "key", Value: args.ConfigKey, Reason: err.Error()}
	}
	v = maskIfSecret(args.ConfigKey, v)

	if args.JSON {
		return NewJSONResponse("config get", ConfigData{Key: args.ConfigKey, Value: v}).Print()
	}
	fmt.Fprintln(stdout, v)
	return nil
}

// handleConfigSet changes one value in the file. Only the file is read and
// written, so environment overrides never end up on disk.
func handleConfigSet(args Args, path string) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "folio config set ui.theme light")
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return NewCommandError("config", "set", "could not read "+path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return NewCommandError("config", "set", "could not read "+path, err)
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return &ValidationError{Field: "key", Value: args.ConfigKey, Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return NewCommandError("config", "set", "could not save "+path, err)
	}

	if args.JSON {
		v, _ := cfg.Get(args.ConfigKey)
		return NewJSONResponse("config set", ConfigData{
			Key:   args.ConfigKey,
			Value: maskIfSecret(args.ConfigKey, v),
		}).Print()
	}
	if !args.Quiet {
		fmt.Fprintf(stdout, "%s %s = %v\n", SuccessStyle.Render("[OK]"),
			args.ConfigKey, maskIfSecret(args.ConfigKey, args.ConfigVal))
	}
	return nil
}

// handleConfigPath shows the config file path.
func handleConfigPath(args Args, path string) error {
	_, err := os.Stat(path)
	exists := err == nil

	if args.JSON {
		return NewJSONResponse("config path", map[string]interface{}{
			"path":   path,
			"exists": exists,
		}).Print()
	}

	fmt.Fprintln(stdout, path)
	if !exists && !args.Quiet {
		fmt.Fprintln(stderr, DimStyle.Render("(file does not exist, defaults are in use)"))
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// maskAPIKey replaces a key with a short SHA-256 fingerprint.
// SECURITY: never print a key prefix.
func maskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("sha256:%x...", hash[:4])
}

// maskIfSecret masks v when key names a secret.
func maskIfSecret(key string, v interface{}) interface{} {
	keyLower := strings.ToLower(key)
	for _, s := range []string{"key", "secret", "token", "password"} {
		if strings.Contains(keyLower, s) {
			return maskAPIKey(fmt.Sprint(v))
		}
	}
	return v
}
