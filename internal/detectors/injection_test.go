package detectors

import "testing"

func TestProcessInjectionRemoteThreadChain(t *testing.T) {
	src := "import ctypes\n" +
		"h = ctypes.windll.kernel32.OpenProcess(0x1F0FFF, False, pid)\n" +
		"addr = ctypes.windll.kernel32.VirtualAllocEx(h, 0, 4096, 0x3000, 0x40)\n" +
		"ctypes.windll.kernel32.WriteProcessMemory(h, addr, buf, 4096, 0)\n" +
		"ctypes.windll.kernel32.CreateRemoteThread(h, None, 0, addr, None, 0, None)\n"
	fs := evalPy(t, ProcessInjection, src)
	if len(fs) != 4 {
		t.Fatalf("expected 4 findings, got %d", len(fs))
	}
	for _, f := range fs {
		if f.Confidence != 0.95 {
			t.Fatalf("expected confidence 0.95 for %s, got %v", f.Evidence, f.Confidence)
		}
	}
}

func TestProcessInjectionDLLLoad(t *testing.T) {
	src := "import ctypes\nlib = ctypes.CDLL(\"libc.so.6\")\n"
	fs := evalPy(t, ProcessInjection, src)
	if len(fs) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(fs))
	}
	if fs[0].Evidence != "ctypes.CDLL" {
		t.Fatalf("unexpected evidence %q", fs[0].Evidence)
	}
}

func TestProcessInjectionNeedsCtypesPath(t *testing.T) {
	src := "import mylib\nmylib.OpenProcess(1)\n"
	if fs := evalPy(t, ProcessInjection, src); len(fs) != 0 {
		t.Fatalf("expected no findings, got %+v", fs)
	}
}
