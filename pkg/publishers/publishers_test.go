package publishers

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.yaml")
	raw := `
publishers:
  - id: http1
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: sqs1
    type: SQS
    sqs:
      uri: https://sqs.eu-west-1.amazonaws.com/123/library
      region: eu-west-1
      endpoint: http://localhost:4566
  - id: ps1
    type: pubsub
    pubsub:
      project_id: library
      topic: changes
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 2 || enabled[0].ID != "sqs1" || enabled[1].ID != "ps1" {
		t.Fatalf("expected sqs1 and ps1 enabled, got %#v", enabled)
	}

	sqsCfg, ok := reg.ByID("sqs1")
	if !ok || sqsCfg.Type != TypeSQS {
		t.Fatalf("sqs1 not normalized: %#v", sqsCfg)
	}
	if sqsCfg.SQS.Region != "eu-west-1" || sqsCfg.SQS.Endpoint != "http://localhost:4566" {
		t.Fatalf("inline aws config not decoded: %#v", sqsCfg.SQS)
	}

	httpCfg, _ := reg.ByID("http1")
	if httpCfg.HTTP.Method != httpDefaultMethod || httpCfg.HTTP.TimeoutSeconds != httpDefaultTimeoutSeconds {
		t.Fatalf("http defaults not applied: %#v", httpCfg.HTTP)
	}
}

func TestLoadRegistryJSONFlattensAWSConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publishers.json")
	raw := `{"publishers":[{"id":"t","type":"sns","sns":{"topic_arn":"arn:aws:sns:us-east-1:1:lib","region":"us-east-1"}}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	cfg, _ := reg.ByID("t")
	if cfg.SNS.Region != "us-east-1" {
		t.Fatalf("region = %q", cfg.SNS.Region)
	}
}

func TestValidatePublisherConfig(t *testing.T) {
	cases := []PublisherConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "q1", Type: TypeSQS, SQS: &SQSPublisherConfig{QueueURL: "https://q"}},
		{ID: "s1", Type: TypeSNS, SNS: &SNSPublisherConfig{AWSConfig: AWSConfig{Region: "us-east-1"}}},
		{ID: "p1", Type: TypePubSub, PubSub: &PubSubPublisherConfig{ProjectID: "x"}},
		{ID: "k1", Type: "kafka"},
		{Type: TypeHTTP},
	}
	for _, cfg := range cases {
		if err := validatePublisherConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}
