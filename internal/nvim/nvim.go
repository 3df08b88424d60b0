package nvim

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/neovim/go-client/nvim"
)

// ErrNoInstance is returned when no running Neovim advertises its address.
var ErrNoInstance = errors.New("no running Neovim found ($NVIM and $NVIM_LISTEN_ADDRESS are unset)")

// Manager handles the connection to a running Neovim instance.
type Manager struct {
	nvim *nvim.Nvim
}

// Address returns the socket of the Neovim this process runs under, if any.
func Address() string {
	for _, key := range []string{"NVIM", "NVIM_LISTEN_ADDRESS"} {
		if addr := os.Getenv(key); addr != "" {
			return addr
		}
	}
	return ""
}

// New connects to the Neovim at Address.
func New() (*Manager, error) {
	addr := Address()
	if addr == "" {
		return nil, ErrNoInstance
	}
	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nvim at %s: %w", addr, err)
	}
	return &Manager{nvim: v}, nil
}

// Close disconnects from Neovim.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
}

// Show opens a new scratch buffer named after title and fills it with lines.
func (m *Manager) Show(title string, lines []string) error {
	content := make([][]byte, len(lines))
	for i, s := range lines {
		content[i] = []byte(s)
	}

	b := m.nvim.NewBatch()
	b.Command("enew")
	for _, cmd := range scratchCommands(title) {
		b.Command(cmd)
	}
	b.SetBufferLines(0, 0, -1, true, content)
	b.Command("setlocal nomodifiable")
	if err := b.Execute(); err != nil {
		return fmt.Errorf("failed to fill nvim buffer: %w", err)
	}
	return nil
}

// scratchCommands sets up a buffer that is never written and disappears when hidden.
func scratchCommands(title string) []string {
	cmds := []string{
		"setlocal buftype=nofile bufhidden=wipe noswapfile nowrap nonumber",
	}
	if title != "" {
		cmds = append(cmds, "silent! file "+escapeName("sidediff://"+title))
	}
	return cmds
}

// escapeName escapes characters :file treats specially.
func escapeName(name string) string {
	r := strings.NewReplacer(" ", `\ `, "%", `\%`, "#", `\#`, "|", `\|`, `"`, `\"`)
	return r.Replace(name)
}
