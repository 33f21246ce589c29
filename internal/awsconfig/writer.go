package awsconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/jmreicha/ssoprofile/internal/core"
	"github.com/jmreicha/ssoprofile/internal/generate"
)

const (
	// BeginMarker starts every generated block.
	BeginMarker = "#BEGIN_AWS_SSO_PROFILES"

	// EndMarker ends every generated block.
	EndMarker = "#END_AWS_SSO_PROFILES"

	// RegistrationScope is written to the sso-session section.
	RegistrationScope = "sso:account:access"

	// LegacyProfile is the static profile closing every block.
	LegacyProfile = "old"

	legacyRegion = "us-east-1"
	configPerm   = 0o600
)

// Mode selects what happens to existing content when a block is written.
type Mode string

// Write modes.
const (
	ModeAppend    Mode = "append"
	ModeOverwrite Mode = "overwrite"
	ModePrune     Mode = "prune"
)

// ParseMode converts a flag value into a Mode. Empty means append.
func ParseMode(value string) (Mode, error) {
	switch mode := Mode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return ModeAppend, nil
	case ModeAppend, ModeOverwrite, ModePrune:
		return mode, nil
	default:
		return "", &core.ValidationError{Field: "write mode", Value: value, Reason: "must be append, overwrite or prune"}
	}
}

// Session describes the sso-session section of a block.
type Session struct {
	Name     string
	StartURL string
	Region   string
}

// Load reads path and scans the content that will remain once mode is
// applied. A missing file scans as empty.
func Load(path string, mode Mode) (*Scan, error) {
	content, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	return ScanContent(remaining(content, mode))
}

// Render builds one generated block. Sections that existing already has are
// left out so the file never holds duplicate sections. The sso-session is
// only left out when the existing one is identical, so callers check
// existing.CheckSession first. The returned warnings are non-fatal.
func Render(result *generate.Result, session Session, existing *Scan) (string, []error) {
	if existing == nil {
		existing = &Scan{}
	}

	var warnings []error
	builder := &strings.Builder{}
	builder.WriteString("\n")
	builder.WriteString(BeginMarker + "\n")

	if !existing.sessionMatches(session) {
		writeSectionHeader(builder, ssoSessionPrefix+session.Name)
		writeKeyValue(builder, "sso_start_url", session.StartURL)
		writeKeyValue(builder, "sso_region", session.Region)
		writeKeyValue(builder, "sso_registration_scopes", RegistrationScope)
		builder.WriteString("\n")
	}

	if result != nil {
		for _, entry := range result.Profiles {
			_, _ = fmt.Fprintf(builder, "# %s (%s) %s\n", entry.AccountName, entry.AccountID, entry.RoleName)
			writeSectionHeader(builder, profileSectionPrefix+entry.Name)
			writeProfileEntry(builder, session.Name, entry)
			builder.WriteString("\n")
		}

		if result.Default != nil {
			if existing.HasDefault {
				warnings = append(warnings, &core.NamingError{
					Target: result.Default.Name,
					Reason: "not mirrored because [default] already exists, rerun with --overwrite, or with --prune when an earlier run wrote it",
				})
			} else {
				writeSectionHeader(builder, defaultSection)
				writeProfileEntry(builder, session.Name, *result.Default)
				builder.WriteString("\n")
			}
		}
	}

	if !existing.HasProfile(LegacyProfile) {
		writeSectionHeader(builder, profileSectionPrefix+LegacyProfile)
		writeKeyValue(builder, "region", legacyRegion)
	}

	builder.WriteString(EndMarker + "\n")
	return builder.String(), warnings
}

// Write persists block to path. Append mode adds the block with a single
// write. Overwrite and prune back the file up first and replace it
// atomically. It returns the backup path, if one was made.
func Write(path string, mode Mode, block string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	if mode == ModeAppend || mode == "" {
		return "", appendBlock(path, block)
	}

	content, err := readConfigFile(path)
	if err != nil {
		return "", err
	}

	backup, err := core.BackupFile(path)
	if err != nil {
		return "", fmt.Errorf("backup config: %w", err)
	}

	kept := remaining(content, mode)
	if kept != "" && !strings.HasSuffix(kept, "\n") {
		kept += "\n"
	}

	perm := os.FileMode(configPerm)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := renameio.WriteFile(path, []byte(kept+block), perm); err != nil {
		return backup, fmt.Errorf("write config %q: %w", path, err)
	}
	return backup, nil
}

func appendBlock(path, block string) error {
	existing, err := readConfigFile(path)
	if err != nil {
		return err
	}
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		block = "\n" + block
	}

	// #nosec G302 G304 -- AWS config files use 0600 permissions; path is user-configurable.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, configPerm)
	if err != nil {
		return fmt.Errorf("open config %q for append: %w", path, err)
	}

	if _, err := f.WriteString(block); err != nil {
		_ = f.Close()
		return fmt.Errorf("append profiles to %q: %w", path, err)
	}
	return f.Close()
}

// remaining returns the part of content that survives mode.
func remaining(content string, mode Mode) string {
	switch mode {
	case ModeOverwrite:
		return ""
	case ModePrune:
		kept, _ := StripBlocks(content)
		if strings.TrimSpace(kept) == "" {
			return ""
		}
		return kept
	default:
		return content
	}
}

func writeProfileEntry(builder *strings.Builder, sessionName string, entry generate.ProfileEntry) {
	writeKeyValue(builder, "sso_session", sessionName)
	writeKeyValue(builder, "sso_account_id", entry.AccountID)
	writeKeyValue(builder, "sso_role_name", entry.RoleName)
	writeKeyValue(builder, "region", entry.Region)
	writeKeyValue(builder, "output", entry.Output)
}

func writeSectionHeader(builder *strings.Builder, name string) {
	builder.WriteString("[")
	builder.WriteString(name)
	builder.WriteString("]\n")
}

func writeKeyValue(builder *strings.Builder, key, value string) {
	builder.WriteString(key)
	builder.WriteString(" = ")
	builder.WriteString(value)
	builder.WriteString("\n")
}
