package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"phisweep/internal/config"
	"phisweep/internal/logging"
	"phisweep/internal/services"
)

// Executor abstracts command execution for the policy scanner.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	return cmd.CombinedOutput()
}

// GPFSScanner drives mmapplypolicy. Matching files are not emitted: the
// policy's EXEC command receives them as file lists and ingests them itself.
type GPFSScanner struct {
	cfg    config.GPFS
	days   int
	exec   Executor
	logger *slog.Logger
}

// NewGPFSScanner builds a policy scanner. days > 0 adds a modification age
// clause to every search.
func NewGPFSScanner(cfg config.GPFS, days int, logger *slog.Logger) *GPFSScanner {
	return NewGPFSScannerWithExecutor(cfg, days, logger, nil)
}

// NewGPFSScannerWithExecutor allows injecting a custom executor for testing.
func NewGPFSScannerWithExecutor(cfg config.GPFS, days int, logger *slog.Logger, executor Executor) *GPFSScanner {
	if executor == nil {
		executor = commandExecutor{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &GPFSScanner{cfg: cfg, days: days, exec: executor, logger: logging.NewComponentLogger(logger, "gpfs")}
}

// CheckState requires exactly one "active" line from mmgetstate.
func (g *GPFSScanner) CheckState(ctx context.Context) error {
	out, err := g.exec.Run(ctx, g.cfg.StateBinary, nil)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "gpfs", "mmgetstate", "GPFS client not available", err)
	}
	active := 0
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "active") {
			active++
		}
	}
	if active != 1 {
		return services.Wrap(services.ErrExternalTool, "gpfs", "mmgetstate",
			fmt.Sprintf("GPFS not in active state (%d active lines)", active), nil)
	}
	return nil
}

// Scan checks the client state and runs one policy per configured search.
func (g *GPFSScanner) Scan(ctx context.Context, _ Emit) error {
	if len(g.cfg.Search) == 0 {
		return services.Wrap(services.ErrConfiguration, "gpfs", "scan", "no gpfs.search entries configured", nil)
	}
	if err := g.CheckState(ctx); err != nil {
		return err
	}
	for _, search := range g.cfg.Search {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.runSearch(ctx, search); err != nil {
			return err
		}
	}
	return nil
}

func (g *GPFSScanner) runSearch(ctx context.Context, search config.GPFSSearch) error {
	policy, err := os.CreateTemp(g.cfg.LocalWorkDir, "phisweep-*.pol")
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "gpfs", "write policy", "create policy file", err)
	}
	policyPath := policy.Name()
	defer os.Remove(policyPath)

	if _, err := policy.WriteString(BuildPolicy(g.cfg.ExecCommand, search, g.days)); err != nil {
		policy.Close()
		return services.Wrap(services.ErrExternalTool, "gpfs", "write policy", policyPath, err)
	}
	if err := policy.Close(); err != nil {
		return services.Wrap(services.ErrExternalTool, "gpfs", "write policy", policyPath, err)
	}

	args := PolicyArgs(g.cfg, search.FSName, policyPath)
	g.logger.Info("running policy scan",
		logging.Args(
			logging.String(logging.FieldEventType, "gpfs_policy_start"),
			logging.String("fsname", search.FSName),
			logging.String("fileset", search.Fileset),
		)...,
	)
	out, err := g.exec.Run(ctx, g.cfg.Binary, args)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "gpfs", "mmapplypolicy",
			fmt.Sprintf("%s failed: %s", search.FSName, lastLine(out)), err)
	}
	g.logger.Debug("policy scan finished", logging.Args(logging.String("fsname", search.FSName))...)
	return nil
}

// PolicyArgs builds the mmapplypolicy command line.
func PolicyArgs(cfg config.GPFS, fsname, policyPath string) []string {
	return []string{
		fsname,
		"-P", policyPath,
		"-B", strconv.Itoa(cfg.MaxFiles),
		"-m", strconv.Itoa(cfg.ThreadLevel),
		"-g", cfg.GlobalWorkDir,
		"-s", cfg.LocalWorkDir,
		"-N", cfg.NodeList,
		"-L", strconv.Itoa(cfg.DebugLevel),
	}
}

const basePolicy = `define(LAST_MODIFIED,(DAYS(CURRENT_TIMESTAMP)-DAYS(MODIFICATION_TIME)))
RULE EXTERNAL LIST 'AllFiles' EXEC '%s' ESCAPE '%%/, '
RULE 'ListAllFiles' LIST 'AllFiles' DIRECTORIES_PLUS
SHOW( VARCHAR( FILESET_NAME )   || ' ' ||
      VARCHAR( POOL_NAME )      || ' ' ||
      VARCHAR( FILE_SIZE )      || ' ' ||
      VARCHAR( KB_ALLOCATED )   || ' ' ||
      VARCHAR( USER_ID )        || ' ' ||
      VARCHAR( GROUP_ID )       || ' ' ||
      VARCHAR( DAYS( CREATION_TIME ))     || ' ' ||
      VARCHAR( DAYS( MODIFICATION_TIME )) || ' ' ||
      VARCHAR( DAYS( CHANGE_TIME ))       || ' ' ||
      VARCHAR( DAYS( ACCESS_TIME ))       || ' ' ||
      CASE WHEN XATTR( 'dmapi.IBMObj' ) IS NOT NULL THEN 'M'
           WHEN XATTR( 'dmapi.IBMPMig') IS NOT NULL THEN 'P'
           ELSE 'R'
      END )
`

// BuildPolicy renders the policy file for one search.
func BuildPolicy(execCommand string, search config.GPFSSearch, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, basePolicy, execCommand)
	if search.Fileset != "" {
		fmt.Fprintf(&b, "FOR FILESET ('%s')\n", search.Fileset)
	}
	selectRule := strings.TrimSpace(search.Select)
	switch {
	case days > 0 && selectRule != "":
		fmt.Fprintf(&b, "WHERE (LAST_MODIFIED <= %d) AND %s\n", days, selectRule)
	case days > 0:
		fmt.Fprintf(&b, "WHERE (LAST_MODIFIED <= %d)\n", days)
	case selectRule != "":
		fmt.Fprintf(&b, "WHERE %s\n", selectRule)
	}
	return b.String()
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
