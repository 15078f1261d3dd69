package s3

import (
	"context"
	"testing"
)

func TestNewClientStripsScheme(t *testing.T) {
	client, err := NewClient(Config{Endpoint: "http://localhost:9000", AccessKey: "a", SecretKey: "b", Region: "eu-south-1"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if got := client.EndpointURL().Host; got != "localhost:9000" {
		t.Fatalf("host = %q", got)
	}
}

func TestNewClientRequiresEndpointAndCredentials(t *testing.T) {
	if _, err := NewClient(Config{AccessKey: "a", SecretKey: "b"}); err == nil {
		t.Fatalf("expected endpoint error")
	}
	if _, err := NewClient(Config{Endpoint: "localhost:9000"}); err == nil {
		t.Fatalf("expected credentials error")
	}
}

func TestEnsureBucketValidatesArguments(t *testing.T) {
	if err := EnsureBucket(context.Background(), nil, "listings", ""); err == nil {
		t.Fatalf("expected nil client error")
	}

	client, err := NewClient(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := EnsureBucket(context.Background(), client, "  ", ""); err == nil {
		t.Fatalf("expected empty bucket error")
	}
}
