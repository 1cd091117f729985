package shell

import (
	"fmt"
	"strings"
)

// Renderer renders dialect-native shell code. There is one implementation
// per supported dialect; DialectBash and DialectZsh share the POSIX
// renderer and differ only in how the auto-switch hook is registered.
type Renderer interface {
	// Dialect returns the dialect this renderer targets.
	Dialect() Dialect

	// BlockBody renders the managed block body: code that removes prior
	// PHP entries from the search path and prepends the selected
	// version's bin and sbin directories. When autoSwitch is set, a
	// directory-change hook invoking `phpvm hook` is appended.
	BlockBody(binDir, sbinDir string, autoSwitch bool) string

	// ReloadScript renders a standalone script performing the equivalent
	// path rebuild, for manual sourcing in already-running sessions.
	ReloadScript(binDir, sbinDir string) string

	// CanMutateLive reports whether the phpvm process itself can usefully
	// export the rebuilt path for this dialect. Fish keeps its path list
	// as session state that cannot be reached from outside.
	CanMutateLive() bool
}

// RendererFor returns the renderer for a dialect.
func RendererFor(d Dialect) (Renderer, error) {
	switch d {
	case DialectBash, DialectZsh:
		return &posixRenderer{dialect: d}, nil
	case DialectFish:
		return &fishRenderer{}, nil
	default:
		return nil, &UnsupportedDialectError{Shell: d.String()}
	}
}

// posixRenderer renders for bash and zsh: a shell-local filter helper and a
// single exported colon-joined PATH.
type posixRenderer struct {
	dialect Dialect
}

func (r *posixRenderer) Dialect() Dialect    { return r.dialect }
func (r *posixRenderer) CanMutateLive() bool { return true }

// posixFilter strips every PATH entry containing "php" (case-insensitive)
// and prints the remainder colon-joined.
const posixFilter = `__phpvm_path() {
  _phpvm_result=""
  _phpvm_old_ifs="$IFS"; IFS=:
  for _phpvm_dir in $PATH; do
    case "$(printf '%s' "$_phpvm_dir" | tr '[:upper:]' '[:lower:]')" in
    *php*) ;;
    *) _phpvm_result="${_phpvm_result:+$_phpvm_result:}$_phpvm_dir" ;;
    esac
  done
  IFS="$_phpvm_old_ifs"
  printf '%s' "$_phpvm_result"
}`

func (r *posixRenderer) BlockBody(binDir, sbinDir string, autoSwitch bool) string {
	var b strings.Builder
	b.WriteString(posixFilter)
	b.WriteString("\n")
	fmt.Fprintf(&b, "PATH=%q:%q:\"$(__phpvm_path)\"\n", binDir, sbinDir)
	b.WriteString("export PATH\n")

	if autoSwitch {
		b.WriteString(`__phpvm_auto_switch() {
  command -v phpvm >/dev/null 2>&1 && eval "$(phpvm hook --dir "$PWD" 2>/dev/null)"
}
`)
		if r.dialect == DialectZsh {
			b.WriteString("autoload -Uz add-zsh-hook\n")
			b.WriteString("add-zsh-hook chpwd __phpvm_auto_switch\n")
		} else {
			b.WriteString(`case ";$PROMPT_COMMAND;" in
*";__phpvm_auto_switch;"*) ;;
*) PROMPT_COMMAND="__phpvm_auto_switch${PROMPT_COMMAND:+;$PROMPT_COMMAND}" ;;
esac
`)
		}
	}

	return b.String()
}

func (r *posixRenderer) ReloadScript(binDir, sbinDir string) string {
	var b strings.Builder
	b.WriteString("# phpvm reload script. Source this file to update PATH in the\n")
	b.WriteString("# current session, e.g.:  . <this file>\n")
	b.WriteString(posixFilter)
	b.WriteString("\n")
	fmt.Fprintf(&b, "PATH=%q:%q:\"$(__phpvm_path)\"\n", binDir, sbinDir)
	b.WriteString("export PATH\n")
	b.WriteString("unset -f __phpvm_path\n")
	return b.String()
}

// fishRenderer renders for fish, which keeps PATH as an ordered list and is
// rebuilt with list-native operations rather than string splicing.
type fishRenderer struct{}

func (r *fishRenderer) Dialect() Dialect    { return DialectFish }
func (r *fishRenderer) CanMutateLive() bool { return false }

func fishRebuild(binDir, sbinDir string) string {
	var b strings.Builder
	b.WriteString("set -l __phpvm_keep\n")
	b.WriteString("for __phpvm_dir in $PATH\n")
	b.WriteString("    if not string match -q -i '*php*' -- $__phpvm_dir\n")
	b.WriteString("        set -a __phpvm_keep $__phpvm_dir\n")
	b.WriteString("    end\n")
	b.WriteString("end\n")
	fmt.Fprintf(&b, "set -gx PATH %q %q $__phpvm_keep\n", binDir, sbinDir)
	return b.String()
}

func (r *fishRenderer) BlockBody(binDir, sbinDir string, autoSwitch bool) string {
	body := fishRebuild(binDir, sbinDir)
	if autoSwitch {
		body += `function __phpvm_auto_switch --on-variable PWD
    type -q phpvm; and phpvm hook --dir $PWD | source
end
`
	}
	return body
}

func (r *fishRenderer) ReloadScript(binDir, sbinDir string) string {
	return "# phpvm reload script. Source this file to update PATH in the\n" +
		"# current session, e.g.:  source <this file>\n" +
		fishRebuild(binDir, sbinDir)
}
