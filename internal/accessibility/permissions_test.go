package accessibility

import (
	"context"
	"errors"
	"testing"
)

func TestPermissionProbeFull(t *testing.T) {
	p := &PermissionProbe{runOsascript: func(ctx context.Context, script string) (string, error) {
		return "true", nil
	}}

	level, guidance := p.Probe(context.Background())
	if level != LevelFull {
		t.Errorf("expected LevelFull, got %v", level)
	}
	if guidance != nil {
		t.Error("expected no guidance at full permission")
	}
}

func TestPermissionProbePartial(t *testing.T) {
	p := &PermissionProbe{runOsascript: func(ctx context.Context, script string) (string, error) {
		return "false", nil
	}}

	level, guidance := p.Probe(context.Background())
	if level != LevelPartial {
		t.Errorf("expected LevelPartial, got %v", level)
	}
	if guidance == nil || len(guidance.Steps) == 0 {
		t.Error("expected guidance steps for partial permission")
	}
}

func TestPermissionProbeNoneOnError(t *testing.T) {
	p := &PermissionProbe{runOsascript: func(ctx context.Context, script string) (string, error) {
		return "", errors.New("not authorized")
	}}

	level, guidance := p.Probe(context.Background())
	if level != LevelNone {
		t.Errorf("expected LevelNone, got %v", level)
	}
	if guidance == nil {
		t.Error("expected guidance on probe failure")
	}
}
