package privilege

// SanitisedPath is the only PATH the target command ever sees.
const SanitisedPath = "/usr/local/sbin:/usr/local/bin:/usr/bin"

// BuildEnviron builds the target environment from scratch: nothing from the
// invoker survives except what is explicitly added here.
func BuildEnviron(home string) []string {
	return []string{
		"HOME=" + home,
		"PATH=" + SanitisedPath,
	}
}
