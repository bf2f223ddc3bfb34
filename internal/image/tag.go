package image

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"k8s.io/utils/clock"

	"github.com/deep-research-mcp/deployer/internal/output"
	"github.com/deep-research-mcp/deployer/internal/tool"
)

// TagOrigin records how a revision tag was derived.
type TagOrigin string

const (
	// OriginGit means the tag is the short commit id of the build context.
	OriginGit TagOrigin = "git"
	// OriginTimestamp means no commit was available and the tag is time-derived.
	OriginTimestamp TagOrigin = "timestamp"
	// OriginExplicit means the caller supplied the tag.
	OriginExplicit TagOrigin = "explicit"
)

var shortSHA = regexp.MustCompile(`^[0-9a-f]{4,40}$`)

// TagSource derives one revision tag per build: the short commit id of the
// nearest git repository, or a strictly increasing millisecond timestamp when
// there is no version-control context.
type TagSource struct {
	// GitBinary is the git binary name or path. Empty means "git".
	GitBinary string

	runner tool.Runner
	clock  clock.PassiveClock

	mu   sync.Mutex
	last int64
}

// NewTagSource creates a TagSource. A nil clock uses the real clock.
func NewTagSource(runner tool.Runner, c clock.PassiveClock) *TagSource {
	if c == nil {
		c = clock.RealClock{}
	}
	return &TagSource{runner: runner, clock: c}
}

// Next returns the revision tag for the build context at dir.
func (s *TagSource) Next(ctx context.Context, dir string) (string, TagOrigin) {
	if s.runner != nil {
		git := s.GitBinary
		if git == "" {
			git = "git"
		}
		res, err := s.runner.Run(ctx, tool.Command{
			Name: git,
			Args: []string{"rev-parse", "--short", "HEAD"},
			Dir:  dir,
		})
		if err == nil {
			if sha := strings.TrimSpace(string(res.Stdout)); shortSHA.MatchString(sha) {
				return sha, OriginGit
			}
		}
		output.Debug("no git revision for build context, using timestamp tag", "dir", dir)
	}
	return s.timestamp(), OriginTimestamp
}

// timestamp returns the current time in Unix milliseconds, bumped past the
// previous value so two calls never produce the same tag.
func (s *TagSource) timestamp() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.clock.Now().UTC().UnixMilli()
	if v <= s.last {
		v = s.last + 1
	}
	s.last = v
	return strconv.FormatInt(v, 10)
}
