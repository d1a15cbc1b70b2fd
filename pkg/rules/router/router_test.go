package router

import (
	"reflect"
	"testing"

	"lcopilot-hq/lcopilot/pkg/docs"
)

func contextWithRules(applicableRules string) *docs.Context {
	return docs.NewContext(docs.Tree{
		"lc": map[string]any{
			"applicable_rules": applicableRules,
		},
	})
}

func TestResolveDomainSequence(t *testing.T) {
	tests := []struct {
		name string
		ctx  *docs.Context
		want []string
	}{
		{
			"explicit ucp600 clause",
			contextWithRules("This credit is subject to UCP 600"),
			[]string{DomainUCP600, DomainCrossDoc},
		},
		{
			"no markers defaults to ucp600",
			contextWithRules("UCP LATEST VERSION"),
			[]string{DomainUCP600, DomainCrossDoc},
		},
		{
			"isp98 standby",
			contextWithRules("subject to ISP98, ICC publication 590"),
			[]string{DomainISP98, DomainCrossDoc},
		},
		{
			"isp98 outranks quoted ucp600 boilerplate",
			contextWithRules("subject to ISP 98; articles of UCP 600 apply where not inconsistent"),
			[]string{DomainISP98, DomainCrossDoc},
		},
		{
			"urdg758 demand guarantee",
			contextWithRules("demand guarantee subject to URDG 758"),
			[]string{DomainURDG758, DomainCrossDoc},
		},
		{
			"urc522 collection",
			contextWithRules("documentary collection under URC 522"),
			[]string{DomainURC522, DomainCrossDoc},
		},
		{
			"eucp supplements ucp600",
			contextWithRules("subject to eUCP version 2.1 (and UCP 600)"),
			[]string{DomainUCP600, DomainEUCP, DomainCrossDoc},
		},
		{
			"eucp marker without ucp primary is dropped",
			contextWithRules("standby under ISP98; electronic records per eUCP"),
			[]string{DomainISP98, DomainCrossDoc},
		},
		{
			"urr725 supplements any icc primary",
			contextWithRules("UCP 600; bank-to-bank reimbursement under URR 725"),
			[]string{DomainUCP600, DomainURR725, DomainCrossDoc},
		},
	}

	r := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.ResolveDomainSequence(tt.ctx)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("sequence = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveDomainSequenceCallerOverride(t *testing.T) {
	r := New(nil, nil)

	ctx := contextWithRules("subject to UCP 600")
	ctx.Domain = DomainISP98

	got := r.ResolveDomainSequence(ctx)
	if got[0] != DomainISP98 {
		t.Errorf("caller-supplied domain must win, got %v", got)
	}
}

func TestResolveDomainSequenceNonICCOverride(t *testing.T) {
	r := New(nil, nil)

	ctx := contextWithRules("")
	ctx.Domain = "internal.sanctions"

	got := r.ResolveDomainSequence(ctx)
	want := []string{"internal.sanctions"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("non-ICC domains must not pick up crossdoc, got %v", got)
	}
}

func TestResolveDomainSequenceInstrumentHint(t *testing.T) {
	r := New(nil, nil)

	tests := []struct {
		instrument string
		want       string
	}{
		{"standby", DomainISP98},
		{"guarantee", DomainURDG758},
		{"collection", DomainURC522},
		{"commercial", DomainUCP600},
		{"Standby ", DomainISP98},
	}

	for _, tt := range tests {
		ctx := docs.NewContext(docs.Tree{
			"lc": map[string]any{"instrument_type": tt.instrument},
		})
		got := r.ResolveDomainSequence(ctx)
		if got[0] != tt.want {
			t.Errorf("instrument %q resolved %s, want %s", tt.instrument, got[0], tt.want)
		}
	}
}

func TestResolveDomainSequenceIdempotent(t *testing.T) {
	r := New(nil, nil)
	ctx := contextWithRules("subject to eUCP v2.1 supplementing UCP 600")

	first := r.ResolveDomainSequence(ctx)
	for i := 0; i < 5; i++ {
		if got := r.ResolveDomainSequence(ctx); !reflect.DeepEqual(got, first) {
			t.Fatalf("resolution not idempotent: %v vs %v", got, first)
		}
	}
}

func TestResolveDomainSequenceScansAllFields(t *testing.T) {
	r := New(nil, nil)

	// The rulebook clause sits in additional_conditions, not in the
	// canonical applicable_rules field.
	ctx := docs.NewContext(docs.Tree{
		"lc": map[string]any{
			"applicable_rules":      "LATEST VERSION",
			"additional_conditions": "this standby is issued subject to ISP-98",
		},
	})

	got := r.ResolveDomainSequence(ctx)
	if got[0] != DomainISP98 {
		t.Errorf("markers in secondary scan fields must be detected, got %v", got)
	}
}
