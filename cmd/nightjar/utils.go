package nightjar

func pickString(cli string, file *string) string {
	if cli != "" {
		return cli
	}
	if file != nil {
		return *file
	}
	return ""
}

func pickInt(cli int, file *int) int {
	if cli != 0 {
		return cli
	}
	if file != nil {
		return *file
	}
	return 0
}

func pickInt64(cli int64, file *int64) int64 {
	if cli != 0 {
		return cli
	}
	if file != nil {
		return *file
	}
	return 0
}

func pickFloat(cli float64, file *float64) float64 {
	if cli != 0 {
		return cli
	}
	if file != nil {
		return *file
	}
	return 0
}
