package completion

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestToSchemaMessages(t *testing.T) {
	msgs := toSchemaMessages([]Turn{
		{Role: RoleSystem, Text: "be nice"},
		{Role: RoleUser, Text: "hi"},
		{Role: RoleAssistant, Text: "hello"},
	})
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	wantRoles := []schema.RoleType{schema.System, schema.User, schema.Assistant}
	wantText := []string{"be nice", "hi", "hello"}
	for i := range msgs {
		if msgs[i].Role != wantRoles[i] {
			t.Fatalf("msgs[%d].Role: got %s want %s", i, msgs[i].Role, wantRoles[i])
		}
		if msgs[i].Content != wantText[i] {
			t.Fatalf("msgs[%d].Content: got %q want %q", i, msgs[i].Content, wantText[i])
		}
	}
}

func TestToSchemaMessagesSkipsUnknownRole(t *testing.T) {
	msgs := toSchemaMessages([]Turn{{Role: Role("tool"), Text: "x"}})
	if len(msgs) != 0 {
		t.Fatalf("unknown roles must be dropped, got %d messages", len(msgs))
	}
}

func TestDisabledClientAlwaysFails(t *testing.T) {
	if _, err := Disabled().Generate(context.Background(), nil, Params{}); err == nil {
		t.Fatal("disabled client must fail")
	}
}

func TestNewArkClientRequiresCredentials(t *testing.T) {
	if _, err := NewArkClient(context.Background(), ArkConfig{}); err == nil {
		t.Fatal("missing credentials must fail")
	}
}
