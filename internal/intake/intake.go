// Package intake validates manifest configurations submitted through
// GitHub issues and writes the accepted ones into the users directory.
package intake

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/codefl0w/gh-boards/internal/manifest"
)

// Cooldown is the minimum time between successive updates of the same
// manifest file through issue ops.
const Cooldown = 5 * time.Minute

// ProcessedBy identifies the intake path in manifest provenance stamps.
const ProcessedBy = "issue-ops"

var (
	fenceRE  = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	unsafeRE = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
)

// Request is one issue-ops submission.
type Request struct {
	Author string
	Body   string
}

// Result reports where the accepted manifest was written.
type Result struct {
	UserFile string
	UserName string
}

// ValidationError is a rejection whose message is surfaced verbatim to
// the issue author.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Intake validates and persists issue-submitted manifests.
type Intake struct {
	usersDir   string
	logger     *zap.Logger
	now        func() time.Time
	lastCommit func(path string) int64
}

// New creates an Intake writing into usersDir.
func New(usersDir string, logger *zap.Logger) *Intake {
	return &Intake{
		usersDir:   usersDir,
		logger:     logger,
		now:        time.Now,
		lastCommit: gitLastCommitUnix,
	}
}

// Process validates one submission and writes the manifest file. The
// issue author may only create or edit their own manifest, matched
// case-insensitively. The submitted config is kept as-is apart from
// the injected defaults and provenance stamps.
func (i *Intake) Process(req Request) (*Result, error) {
	if req.Author == "" {
		return nil, &ValidationError{Reason: "Missing ISSUE_AUTHOR environment variable."}
	}

	payload := req.Body
	if match := fenceRE.FindStringSubmatch(req.Body); match != nil {
		payload = match[1]
	}

	var config map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &config); err != nil {
		return nil, &ValidationError{Reason: "Could not find valid JSON in the issue body. Please wrap your config in ```json ... ``` blocks."}
	}

	userName, _ := config["user"].(string)
	if userName == "" {
		userName = req.Author
		config["user"] = userName
	}
	if !strings.EqualFold(userName, req.Author) {
		return nil, &ValidationError{Reason: fmt.Sprintf("Permission Denied: Issue author '%s' cannot create/edit manifest for '%s'.", req.Author, userName)}
	}

	fileStem := unsafeRE.ReplaceAllString(userName, "")
	if fileStem == "" {
		return nil, &ValidationError{Reason: fmt.Sprintf("Invalid user name '%s': nothing left after sanitization.", userName)}
	}
	path := filepath.Join(i.usersDir, fileStem+".json")

	if last := i.lastCommit(path); last > 0 {
		if i.now().Unix()-last < int64(Cooldown.Seconds()) {
			return nil, &ValidationError{Reason: "Rate Limit Exceeded: You updated this file less than 5 minutes ago. Please wait."}
		}
	}

	if _, ok := config["schema_version"]; !ok {
		config["schema_version"] = 1
	}
	if _, ok := config["defaults"].(map[string]any); !ok {
		config["defaults"] = map[string]any{
			"theme":      manifest.DefaultTheme,
			"visibility": "public",
			"max_repos":  manifest.DefaultMaxRepos,
		}
	}
	if raw, ok := config["artifacts"]; ok {
		if _, isList := raw.([]any); !isList {
			return nil, &ValidationError{Reason: "'artifacts' must be a list."}
		}
	}

	nowStamp := i.now().UTC().Format(manifest.TimeLayout)

	createdOn := nowStamp
	if existing, err := os.ReadFile(path); err == nil {
		var prev map[string]any
		if err := json.Unmarshal(existing, &prev); err == nil {
			if v, ok := prev["created_on"].(string); ok && v != "" {
				createdOn = v
			}
		}
	}
	config["created_on"] = createdOn
	config["last_update"] = nowStamp

	meta, _ := config["meta"].(map[string]any)
	if meta == nil {
		meta = map[string]any{}
	}
	meta["last_processed_by"] = ProcessedBy
	meta["last_processed_at"] = nowStamp
	config["meta"] = meta

	if err := os.MkdirAll(i.usersDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create users directory %s: %w", i.usersDir, err)
	}
	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write manifest %s: %w", path, err)
	}

	i.logger.Info("manifest accepted",
		zap.String("user", userName),
		zap.String("path", path),
	)
	return &Result{UserFile: path, UserName: userName}, nil
}

// gitLastCommitUnix returns the unix time of the last commit touching
// path, or zero when the file is new, untracked, or git is unavailable.
func gitLastCommitUnix(path string) int64 {
	if _, err := os.Stat(path); err != nil {
		return 0
	}
	out, err := exec.Command("git", "log", "-1", "--format=%ct", path).Output()
	if err != nil {
		return 0
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
	if err != nil {
		return 0
	}
	return ts
}
