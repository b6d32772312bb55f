package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mdash/internal/modules/plugin/domain"
	"mdash/internal/modules/plugin/dto"
	"mdash/internal/modules/plugin/service"
)

type fakeStore struct {
	manifests []domain.Manifest
}

func (s fakeStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct {
	commands []domain.CommandDescriptor
}

func (fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return nil }
func (fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "fake", Version: "1"}, nil
}
func (h fakeHost) ListCommands(context.Context, domain.Manifest) ([]domain.CommandDescriptor, error) {
	return h.commands, nil
}
func (fakeHost) Execute(context.Context, domain.Manifest, domain.ExecuteRequest) (domain.ExecuteResult, error) {
	return domain.ExecuteResult{Stdout: "ok", Rendered: "date,toolCallsBefore\n", ExitCode: 0}, nil
}
func (fakeHost) PrepareTTY(context.Context, domain.Manifest, domain.ExecuteRequest) (domain.TTYPlan, error) {
	return domain.TTYPlan{Argv: []string{"/bin/echo", "ok"}, Cwd: "/"}, nil
}

func TestExportRejectsDisabledPlugin(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, false, []domain.Capability{domain.CapabilityExport})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{})
	_, err := svc.Export(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "csv", WorkspacePath: "/tmp", Cwd: "/tmp"})
	if !errors.Is(err, domain.ErrPluginDisabled) {
		t.Fatalf("expected ErrPluginDisabled, got %v", err)
	}
}

func TestAnalyzeRejectsMissingCapability(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{})
	_, err := svc.Analyze(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "totals", WorkspacePath: "/tmp", Cwd: "/tmp"})
	if !errors.Is(err, domain.ErrCapabilityMissing) {
		t.Fatalf("expected ErrCapabilityMissing, got %v", err)
	}
}

func TestExportRejectsUnknownCommand(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{commands: []domain.CommandDescriptor{{ID: "other", Kind: domain.CommandKindExport}}})
	_, err := svc.Export(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "csv", WorkspacePath: "/tmp", Cwd: "/tmp"})
	if !errors.Is(err, domain.ErrCommandNotFound) {
		t.Fatalf("expected ErrCommandNotFound, got %v", err)
	}
}

func TestExportRejectsWrongCommandKind(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport, domain.CapabilityAnalyze})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{commands: []domain.CommandDescriptor{{ID: "totals", Kind: domain.CommandKindAnalyze}}})
	_, err := svc.Export(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "totals", WorkspacePath: "/tmp", Cwd: "/tmp"})
	if err == nil || !strings.Contains(err.Error(), "kind") {
		t.Fatalf("expected kind mismatch error, got %v", err)
	}
}

func TestExportRejectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport})
	manifest.SHA256 = strings.Repeat("ab", 32)
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{})
	_, err := svc.Export(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "csv", WorkspacePath: "/tmp", Cwd: "/tmp"})
	if !errors.Is(err, domain.ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestExportSuccess(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{commands: []domain.CommandDescriptor{{ID: "csv", Kind: domain.CommandKindExport, FileExt: "csv"}}})
	out, err := svc.Export(context.Background(), dto.ExecuteInput{
		PluginName:     manifest.Name,
		CommandID:      "csv",
		WorkspacePath:  "/tmp",
		Cwd:            "/tmp",
		CollectionJSON: `[]`,
	})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if out.ExitCode != 0 || out.Rendered == "" {
		t.Fatalf("expected rendered export output, got %+v", out)
	}
}

func TestAnalyzeRejectsInvalidInputJSON(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityAnalyze})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{commands: []domain.CommandDescriptor{{ID: "totals", Kind: domain.CommandKindAnalyze}}})
	_, err := svc.Analyze(context.Background(), dto.ExecuteInput{PluginName: manifest.Name, CommandID: "totals", WorkspacePath: "/tmp", Cwd: "/tmp", InputJSON: "{broken"})
	if err == nil {
		t.Fatalf("invalid input json should fail")
	}
}

func TestPrepareTTYReturnsPlan(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityFullscreenTTY})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{commands: []domain.CommandDescriptor{{ID: "tty-echo", Kind: domain.CommandKindTTY}}})
	out, err := svc.PrepareTTY(context.Background(), dto.TTYPrepareInput{PluginName: manifest.Name, CommandID: "tty-echo", WorkspacePath: "/tmp", Cwd: "/tmp"})
	if err != nil {
		t.Fatalf("prepare tty: %v", err)
	}
	if len(out.Argv) == 0 || out.Cwd == "" {
		t.Fatalf("plan must carry argv and cwd, got %+v", out)
	}
}

func TestPrepareTTYRejectsMissingCapability(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{})
	_, err := svc.PrepareTTY(context.Background(), dto.TTYPrepareInput{PluginName: manifest.Name, CommandID: "tty-echo", WorkspacePath: "/tmp", Cwd: "/tmp"})
	if !errors.Is(err, domain.ErrCapabilityMissing) {
		t.Fatalf("expected ErrCapabilityMissing, got %v", err)
	}
}

func TestListRejectsDuplicatePluginNames(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport})
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest, manifest}}, fakeHost{})
	if _, err := svc.List(context.Background()); err == nil || !strings.Contains(err.Error(), "duplicate plugin name") {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestDoctorReportsChecksumMismatch(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport})
	manifest.SHA256 = strings.Repeat("cd", 32)
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{})
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
	r := results[0]
	if !r.BinaryReachable || r.ChecksumValid || r.Error != "checksum mismatch" {
		t.Fatalf("unexpected doctor result: %+v", r)
	}
}

func TestDoctorReportsMissingBinary(t *testing.T) {
	t.Parallel()
	manifest := manifestWithBinary(t, true, []domain.Capability{domain.CapabilityExport})
	manifest.Binary = filepath.Join(t.TempDir(), "gone")
	svc := service.NewPluginService(fakeStore{manifests: []domain.Manifest{manifest}}, fakeHost{})
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if results[0].BinaryReachable || results[0].Error == "" {
		t.Fatalf("missing binary must be reported: %+v", results[0])
	}
}

func manifestWithBinary(t *testing.T, enabled bool, capabilities []domain.Capability) domain.Manifest {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "plugin-bin")
	if err := os.WriteFile(binPath, []byte("binary"), 0o755); err != nil {
		t.Fatalf("write binary: %v", err)
	}
	hash := sha256.Sum256([]byte("binary"))
	return domain.Manifest{
		Name:         "demo",
		Version:      "1.0.0",
		Binary:       binPath,
		SHA256:       hex.EncodeToString(hash[:]),
		Enabled:      enabled,
		Capabilities: capabilities,
	}
}
