package domain_test

import (
	"strings"
	"testing"

	"mdash/internal/modules/plugin/domain"
)

func validManifest() domain.Manifest {
	return domain.Manifest{
		Name:         "reference",
		Version:      "1.0.0",
		Binary:       "/opt/plugins/reference",
		SHA256:       strings.Repeat("ab", 32),
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityExport, domain.CapabilityAnalyze},
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	if err := validManifest().Validate(); err != nil {
		t.Fatalf("manifest should be valid: %v", err)
	}

	m := validManifest()
	m.Name = ""
	if err := m.Validate(); err == nil {
		t.Fatalf("missing name should fail")
	}
	m = validManifest()
	m.SHA256 = "ABCDEF"
	if err := m.Validate(); err == nil {
		t.Fatalf("non-hex sha256 should fail")
	}
	m = validManifest()
	m.Capabilities = nil
	if err := m.Validate(); err == nil {
		t.Fatalf("empty capabilities should fail")
	}
	m = validManifest()
	m.Capabilities = []domain.Capability{domain.CapabilityExport, domain.CapabilityExport}
	if err := m.Validate(); err == nil {
		t.Fatalf("duplicate capability should fail")
	}
	m = validManifest()
	m.Capabilities = []domain.Capability{"teleport"}
	if err := m.Validate(); err == nil {
		t.Fatalf("unknown capability should fail")
	}
}

func TestManifestHasCapability(t *testing.T) {
	t.Parallel()
	m := validManifest()
	if !m.HasCapability(domain.CapabilityExport) {
		t.Fatalf("export capability should be present")
	}
	if m.HasCapability(domain.CapabilityFullscreenTTY) {
		t.Fatalf("tty capability should be absent")
	}
}

func TestCommandDescriptorValidate(t *testing.T) {
	t.Parallel()
	d := domain.CommandDescriptor{ID: "csv", Kind: domain.CommandKindExport, FileExt: "csv"}
	if err := d.Validate(); err != nil {
		t.Fatalf("descriptor should be valid: %v", err)
	}
	d.ID = ""
	if err := d.Validate(); err == nil {
		t.Fatalf("missing id should fail")
	}
	d = domain.CommandDescriptor{ID: "csv", Kind: "render"}
	if err := d.Validate(); err == nil {
		t.Fatalf("unknown kind should fail")
	}
}

func TestExecuteRequestValidate(t *testing.T) {
	t.Parallel()
	req := domain.ExecuteRequest{
		CommandID: "csv",
		Context:   domain.ExecuteContext{WorkspacePath: "/ws", Cwd: "/ws", CollectionJSON: "[]"},
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("request should be valid: %v", err)
	}
	req.CommandID = ""
	if err := req.Validate(); err == nil {
		t.Fatalf("missing command id should fail")
	}
	req = domain.ExecuteRequest{CommandID: "csv", Context: domain.ExecuteContext{Cwd: "/ws"}}
	if err := req.Validate(); err == nil {
		t.Fatalf("missing workspace path should fail")
	}
}

func TestTTYPlanValidate(t *testing.T) {
	t.Parallel()
	plan := domain.TTYPlan{Argv: []string{"/bin/sh", "-lc", "true"}, Cwd: "/ws"}
	if err := plan.Validate(); err != nil {
		t.Fatalf("plan should be valid: %v", err)
	}
	plan.Argv = nil
	if err := plan.Validate(); err == nil {
		t.Fatalf("empty argv should fail")
	}
	plan = domain.TTYPlan{Argv: []string{"/bin/sh"}}
	if err := plan.Validate(); err == nil {
		t.Fatalf("missing cwd should fail")
	}
}
