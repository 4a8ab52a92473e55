package cmd

import (
	"fmt"
	"os"
)

type CompletionCmd struct {
	Shell string `arg:"" help:"Shell type: bash, zsh, or fish"`
}

func (c *CompletionCmd) Run() error {
	switch c.Shell {
	case "bash":
		return c.generateBash()
	case "zsh":
		return c.generateZsh()
	case "fish":
		return c.generateFish()
	default:
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh, fish)", c.Shell)
	}
}

func (c *CompletionCmd) generateBash() error {
	script := `# bash completion for makeitbig

_makeitbig_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        opts="split serve version completion"
        COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
        return 0
    fi

    if [[ ${COMP_WORDS[1]} == "split" ]]; then
        case "${prev}" in
            -o|--output)
                COMPREPLY=( $(compgen -f -X '!*.zip' -- ${cur}) )
                return 0
                ;;
            -a|--axis)
                COMPREPLY=( $(compgen -W "x y z" -- ${cur}) )
                return 0
                ;;
            *)
                if [[ ${cur} == -* ]]; then
                    opts="-o --output -H --height -a --axis -b --bed-size -m --margin -h --help"
                    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
                else
                    COMPREPLY=( $(compgen -f -X '!*.stl' -- ${cur}) )
                fi
                return 0
                ;;
        esac
    fi

    if [[ ${COMP_WORDS[1]} == "serve" ]]; then
        case "${prev}" in
            -c|--config)
                COMPREPLY=( $(compgen -f -X '!*.@(yaml|yml)' -- ${cur}) )
                return 0
                ;;
            *)
                opts="-c --config --address -h --help"
                COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
                return 0
                ;;
        esac
    fi

    if [[ ${COMP_WORDS[1]} == "completion" ]]; then
        COMPREPLY=( $(compgen -W "bash zsh fish" -- ${cur}) )
        return 0
    fi
}

complete -F _makeitbig_completions makeitbig
`
	fmt.Fprint(os.Stdout, script)
	return nil
}

func (c *CompletionCmd) generateZsh() error {
	script := `#compdef makeitbig

_makeitbig() {
    local -a commands
    commands=(
        'split:Scale an STL and split it into bed-sized pieces'
        'serve:Run the HTTP processing service'
        'version:Show version information'
        'completion:Generate shell completion scripts'
    )

    if (( CURRENT == 2 )); then
        _describe 'command' commands
        return
    fi

    case $words[2] in
        split)
            _arguments \
                '(-o --output)'{-o,--output}'[Output ZIP path]:file:_files -g "*.zip"' \
                '(-H --height)'{-H,--height}'[Target height in feet]:feet:' \
                '(-a --axis)'{-a,--axis}'[Height axis]:axis:(x y z)' \
                '(-b --bed-size)'{-b,--bed-size}'[Printer bed size in mm]:mm:' \
                '(-m --margin)'{-m,--margin}'[Safety margin in mm]:mm:' \
                '*:file:_files -g "*.stl"'
            ;;
        serve)
            _arguments \
                '(-c --config)'{-c,--config}'[YAML configuration file]:file:_files -g "*.y(a|)ml"' \
                '--address[Listen address]:address:'
            ;;
        completion)
            _values 'shell' bash zsh fish
            ;;
    esac
}

_makeitbig
`
	fmt.Fprint(os.Stdout, script)
	return nil
}

func (c *CompletionCmd) generateFish() error {
	script := `# fish completion for makeitbig

complete -c makeitbig -f
complete -c makeitbig -n '__fish_use_subcommand' -a split -d 'Scale an STL and split it into bed-sized pieces'
complete -c makeitbig -n '__fish_use_subcommand' -a serve -d 'Run the HTTP processing service'
complete -c makeitbig -n '__fish_use_subcommand' -a version -d 'Show version information'
complete -c makeitbig -n '__fish_use_subcommand' -a completion -d 'Generate shell completion scripts'

complete -c makeitbig -n '__fish_seen_subcommand_from split' -s o -l output -d 'Output ZIP path' -r
complete -c makeitbig -n '__fish_seen_subcommand_from split' -s H -l height -d 'Target height in feet' -r
complete -c makeitbig -n '__fish_seen_subcommand_from split' -s a -l axis -d 'Height axis' -xa 'x y z'
complete -c makeitbig -n '__fish_seen_subcommand_from split' -s b -l bed-size -d 'Printer bed size in mm' -r
complete -c makeitbig -n '__fish_seen_subcommand_from split' -s m -l margin -d 'Safety margin in mm' -r
complete -c makeitbig -n '__fish_seen_subcommand_from split' -k -xa '(__fish_complete_suffix .stl)'

complete -c makeitbig -n '__fish_seen_subcommand_from serve' -s c -l config -d 'YAML configuration file' -r
complete -c makeitbig -n '__fish_seen_subcommand_from serve' -l address -d 'Listen address' -r

complete -c makeitbig -n '__fish_seen_subcommand_from completion' -xa 'bash zsh fish'
`
	fmt.Fprint(os.Stdout, script)
	return nil
}
