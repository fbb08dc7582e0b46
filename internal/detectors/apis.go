package detectors

import "strings"

// isShellCommand reports whether the dotted path names a process/shell
// launch primitive.
func isShellCommand(path []string) bool {
	if len(path) != 2 {
		return false
	}
	switch path[0] {
	case "os":
		switch path[1] {
		case "system", "popen", "popen2", "popen3", "popen4", "startfile",
			"execl", "execle", "execlp", "execlpe", "execv", "execve", "execvp", "execvpe",
			"spawnl", "spawnle", "spawnlp", "spawnlpe", "spawnv", "spawnve", "spawnvp", "spawnvpe":
			return true
		}
	case "subprocess":
		switch path[1] {
		case "Popen", "call", "check_call", "check_output", "run", "getoutput", "getstatusoutput":
			return true
		}
	case "popen2":
		switch path[1] {
		case "popen2", "popen3", "popen4", "Popen3", "Popen4":
			return true
		}
	case "commands":
		return path[1] == "getoutput" || path[1] == "getstatusoutput"
	}
	return false
}

// isCodeExec reports whether the dotted path names an
// evaluate-arbitrary-code primitive.
func isCodeExec(path []string) bool {
	switch len(path) {
	case 1:
		return path[0] == "exec" || path[0] == "eval" || path[0] == "execfile"
	case 2:
		if path[0] == "builtins" || path[0] == "__builtins__" {
			return path[1] == "exec" || path[1] == "eval"
		}
	}
	return false
}

// remoteProcessAPIs are the Win32 process-manipulation primitives reached
// through ctypes. Seen together they are the canonical injection chain:
// open a process, allocate in it, write the payload, start a remote thread.
var remoteProcessAPIs = map[string]bool{
	"OpenProcess":        true,
	"VirtualAlloc":       true,
	"VirtualAllocEx":     true,
	"WriteProcessMemory": true,
	"ReadProcessMemory":  true,
	"CreateRemoteThread": true,
	"NtCreateThreadEx":   true,
	"QueueUserAPC":       true,
	"SetWindowsHookExA":  true,
	"SetWindowsHookExW":  true,
}

// isProcessInjection reports whether the dotted path reaches a process or
// remote-memory primitive, directly or through a ctypes handle.
func isProcessInjection(path []string) bool {
	if len(path) == 0 {
		return false
	}
	last := path[len(path)-1]
	joined := strings.Join(path, ".")
	if joined == "ctypes.CDLL" || joined == "ctypes.WinDLL" || joined == "ctypes.OleDLL" || joined == "ctypes.PyDLL" {
		return true
	}
	if !remoteProcessAPIs[last] {
		return false
	}
	for _, seg := range path {
		if seg == "ctypes" || seg == "windll" || seg == "kernel32" || seg == "ntdll" || seg == "user32" {
			return true
		}
	}
	return false
}

// isOutboundNetwork reports whether the dotted path names an outbound
// network call able to carry a payload.
func isOutboundNetwork(path []string) bool {
	joined := strings.Join(path, ".")
	switch joined {
	case "requests.get", "requests.post", "requests.put", "requests.request",
		"urllib.request.urlopen", "urllib.urlopen", "urllib2.urlopen",
		"urllib.request.Request",
		"http.client.HTTPConnection.request", "http.client.HTTPSConnection.request",
		"smtplib.SMTP.sendmail":
		return true
	}
	if len(path) >= 2 {
		switch path[len(path)-1] {
		case "send", "sendall", "sendto":
			// socket objects rarely resolve to a full path; the method name
			// on any receiver is the signal
			return true
		}
	}
	return false
}

// isDownloadRequest reports whether the dotted path names a remote fetch.
func isDownloadRequest(path []string) bool {
	switch strings.Join(path, ".") {
	case "requests.get", "requests.post", "requests.request",
		"urllib.request.urlopen", "urllib.urlopen", "urllib2.urlopen",
		"urllib.request.urlretrieve", "urllib.urlretrieve":
		return true
	}
	return false
}

// isFingerprintCall reports whether the dotted path names a host/OS/network
// identity recon call.
func isFingerprintCall(path []string) bool {
	switch strings.Join(path, ".") {
	case "os.uname", "os.getlogin", "os.getuid", "os.getgid", "os.getcwd",
		"getpass.getuser",
		"platform.system", "platform.platform", "platform.version",
		"platform.release", "platform.node", "platform.processor",
		"platform.machine", "platform.architecture", "platform.uname",
		"socket.gethostname", "socket.getfqdn", "socket.gethostbyname",
		"uuid.getnode",
		"os.environ.copy":
		return true
	}
	return false
}

// isSensitiveAPI reports whether the dotted path is any API worth hiding:
// used to judge indirection chains that resolve to a real target.
func isSensitiveAPI(path []string) bool {
	return isShellCommand(path) || isCodeExec(path) || isProcessInjection(path) ||
		isOutboundNetwork(path) || isDownloadRequest(path)
}

var executableExtensions = []string{".exe", ".dll", ".so", ".dylib", ".bin", ".sh", ".py", ".scr", ".bat", ".ps1"}

func hasExecutableExtension(s string) bool {
	lower := strings.ToLower(s)
	for _, ext := range executableExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
