package mailresolve

import (
	"context"
	"testing"
)

type fakeDirectory struct {
	senders map[string][]Folder // by sender ID
	byEmail map[string]Sender
	all     []Sender
}

func (f *fakeDirectory) ListSenders(ctx context.Context, apiKey string) ([]Sender, error) {
	return f.all, nil
}

func (f *fakeDirectory) GetSenderByEmail(ctx context.Context, apiKey, email string) (*Sender, error) {
	if s, ok := f.byEmail[email]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeDirectory) ListFolders(ctx context.Context, apiKey, senderID string) ([]Folder, error) {
	return f.senders[senderID], nil
}

func TestResolve_PinnedSenderWinsOutright(t *testing.T) {
	dir := &fakeDirectory{}
	pinned := &Sender{ID: "s1", Email: "a@example.com"}
	got, err := Resolve(context.Background(), dir, "key", NewAliases(nil), pinned, "Sent Items")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sender != pinned || got.FolderName != "Sent" {
		t.Errorf("got %+v", got)
	}
}

func TestResolve_EmailSlashFolderSplits(t *testing.T) {
	dir := &fakeDirectory{byEmail: map[string]Sender{"a@example.com": {ID: "s1", Email: "a@example.com"}}}
	got, err := Resolve(context.Background(), dir, "key", NewAliases(nil), nil, "a@example.com/INBOX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sender == nil || got.Sender.ID != "s1" || got.FolderName != "INBOX" {
		t.Errorf("got %+v", got)
	}
}

func TestResolve_SearchesAllAccessibleSenders(t *testing.T) {
	dir := &fakeDirectory{
		all: []Sender{{ID: "s1", Email: "a@example.com"}, {ID: "s2", Email: "b@example.com"}},
		senders: map[string][]Folder{
			"s1": {{Name: "INBOX"}},
			"s2": {{Name: "Archive"}},
		},
	}
	got, err := Resolve(context.Background(), dir, "key", NewAliases(nil), nil, "Archive")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sender == nil || got.Sender.ID != "s2" {
		t.Errorf("got %+v", got)
	}
}

func TestResolve_NoMatchReturnsNilSender(t *testing.T) {
	dir := &fakeDirectory{all: []Sender{{ID: "s1", Email: "a@example.com"}}, senders: map[string][]Folder{"s1": {{Name: "INBOX"}}}}
	got, err := Resolve(context.Background(), dir, "key", NewAliases(nil), nil, "Nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Sender != nil {
		t.Errorf("expected nil sender, got %+v", got.Sender)
	}
}

func TestAliases_CaseInsensitiveMatch(t *testing.T) {
	a := NewAliases(nil)
	if got := a.Normalize("DELETED ITEMS"); got != "Trash" {
		t.Errorf("got %q", got)
	}
}

func TestAliases_UnknownNamePassesThrough(t *testing.T) {
	a := NewAliases(nil)
	if got := a.Normalize("MyCustomFolder"); got != "MyCustomFolder" {
		t.Errorf("got %q", got)
	}
}

func TestAliases_InboxCanonicalized(t *testing.T) {
	a := NewAliases(nil)
	if got := a.Normalize("inbox"); got != "INBOX" {
		t.Errorf("got %q", got)
	}
}
