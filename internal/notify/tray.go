package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitual/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

// TrayBackend delivers reminders through the habitual tray companion
// app, a small resident process that owns OS-level notification triggers.
// The tray advertises its HTTP port and a shared secret through a
// lockfile in its config directory; every request is authenticated with
// that secret.
//
// The tray supports one-shot and daily triggers but cannot repeat on an
// arbitrary weekday set, so custom habits rely on chained scheduling.
type TrayBackend struct {
	// baseURL overrides lockfile discovery when non-empty. For tests.
	baseURL string
	secret  string
	client  *http.Client
}

type trayScheduleRequest struct {
	Content    Content `json:"content"`
	Trigger    Trigger `json:"trigger"`
	DurationMs uint32  `json:"duration_ms"`
}

type trayScheduleResponse struct {
	Identifier string `json:"identifier"`
}

func NewTrayBackend() *TrayBackend {
	return &TrayBackend{client: &http.Client{}}
}

func (t *TrayBackend) SupportsWeekdayRepeat() bool { return false }

func (t *TrayBackend) Submit(ctx context.Context, content Content, trigger Trigger) (string, error) {
	base, secret, err := t.endpoint()
	if err != nil {
		return "", err
	}

	payload := trayScheduleRequest{
		Content:    content,
		Trigger:    trigger,
		DurationMs: constants.NotificationDurationMs,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/schedule", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Habitual-Secret", secret)

	res, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("tray rejected schedule with status %d: %s", res.StatusCode, string(raw))
	}

	var parsed trayScheduleResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("malformed tray response: %w", err)
	}
	if parsed.Identifier == "" {
		return "", errors.New("tray returned an empty identifier")
	}

	return parsed.Identifier, nil
}

func (t *TrayBackend) Cancel(ctx context.Context, handle string) error {
	// Unknown handles are fine: the reminder may have already fired.
	return t.simpleCall(ctx, http.MethodDelete, "/schedule/"+handle)
}

func (t *TrayBackend) DismissDelivered(ctx context.Context, handle string) error {
	return t.simpleCall(ctx, http.MethodPost, "/dismiss/"+handle)
}

func (t *TrayBackend) simpleCall(ctx context.Context, method, path string) error {
	base, secret, err := t.endpoint()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Habitual-Secret", secret)

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK || res.StatusCode == http.StatusNotFound {
		return nil
	}

	raw, _ := io.ReadAll(res.Body)
	return fmt.Errorf("tray call %s %s failed with status %d: %s", method, path, res.StatusCode, string(raw))
}

func (t *TrayBackend) endpoint() (string, string, error) {
	if t.baseURL != "" {
		return t.baseURL, t.secret, nil
	}

	configDir, err := GetTrayAppConfigDir()
	if err != nil {
		return "", "", err
	}

	port, secret, err := findAndValidateTrayProcess(filepath.Join(configDir, constants.NotifierLockfileName))
	if err != nil {
		return "", "", err
	}

	return fmt.Sprintf("http://127.0.0.1:%s", port), secret, nil
}

// GetTrayAppConfigDir returns the configuration directory used by the tray application.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}

	trayConfigDir := filepath.Join(configDir, constants.TrayAppIdentifier)

	// Check for settings.json to see if a custom lockfile dir is set
	settingsPath := filepath.Join(trayConfigDir, "settings.json")
	if _, err := os.Stat(settingsPath); err == nil {
		data, err := os.ReadFile(settingsPath)
		if err == nil {
			var store struct {
				Settings struct {
					LockfileDir *string `json:"lockfile_dir"`
				} `json:"settings"`
			}
			if err := json.Unmarshal(data, &store); err == nil {
				if store.Settings.LockfileDir != nil && *store.Settings.LockfileDir != "" {
					return *store.Settings.LockfileDir, nil
				}
			}
		}
	}

	return trayConfigDir, nil
}

func findAndValidateTrayProcess(lockfilePath string) (string, string, error) {
	content, err := os.ReadFile(lockfilePath)
	if err != nil {
		return "", "", errors.New("habitual-tray is not running")
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return "", "", errors.New("lockfile is malformed")
	}

	port := parts[0]
	if strings.TrimSpace(port) == "" {
		return "", "", errors.New("port in lockfile is empty")
	}
	// Validate port is a valid number in the valid TCP range (1-65535)
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return "", "", errors.New("invalid port number in lockfile")
	}
	if portNum < 1 || portNum > 65535 {
		return "", "", fmt.Errorf("port number %d is outside valid range (1-65535)", portNum)
	}

	pid, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", errors.New("invalid process ID in lockfile")
	}
	secret := parts[2]
	if strings.TrimSpace(secret) == "" {
		return "", "", errors.New("secret in lockfile is empty")
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return "", "", errors.New("habitual-tray process not running")
	}

	if !strings.HasPrefix(process.Executable(), "habitual-tray") {
		return "", "", fmt.Errorf("process with PID %d is not habitual-tray (is %s)", pid, process.Executable())
	}

	return port, secret, nil
}
