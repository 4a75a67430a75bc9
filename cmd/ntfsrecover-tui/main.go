package main

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shubham030/ntfsrecover/internal/device"
	"github.com/shubham030/ntfsrecover/internal/ntfs"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)
)

// State represents the current screen of the volume browser.
type State int

const (
	StateWelcome State = iota
	StateSelectDevice
	StateEnterPath
	StateBrowsing
	StateExtracting
	StateResults
)

type fileItem struct {
	view *ntfs.FileView
}

func (i fileItem) Title() string {
	if i.view.IsDirectory {
		return "📁 " + i.view.Name
	}
	return "📄 " + i.view.Name
}

func (i fileItem) Description() string {
	if i.view.IsDirectory {
		return "directory"
	}
	return fmt.Sprintf("%d bytes", i.view.Size)
}

func (i fileItem) FilterValue() string { return i.view.Name }

type deviceItem struct {
	manual bool
	device device.Device
}

func (i deviceItem) Title() string {
	if i.manual {
		return "Enter path manually..."
	}
	return i.device.Path
}

func (i deviceItem) Description() string {
	if i.manual {
		return "type an image or device path"
	}
	return fmt.Sprintf("%s  %s  %s", i.device.SizeHuman, i.device.Filesystem, i.device.Name)
}

func (i deviceItem) FilterValue() string {
	if i.manual {
		return ""
	}
	return i.device.Path
}

type devicesLoadedMsg struct {
	devices []device.Device
}

type volumeMountedMsg struct {
	volume *ntfs.Volume
	err    error
}

type entriesLoadedMsg struct {
	entries []*ntfs.FileView
	err     error
}

type extractCompleteMsg struct {
	path string
	size int
	err  error
}

type model struct {
	state State
	width int
	height int
	err   error

	deviceList list.Model

	pathInput  textinput.Model
	imagePath  string
	volume     *ntfs.Volume

	currentDir string
	entryList  list.Model

	outputDir string
	spinner   spinner.Model
	statusMsg string
}

func initialModel() model {
	pathInput := textinput.New()
	pathInput.Placeholder = "/path/to/disk.img"
	pathInput.Focus()
	pathInput.Width = 50

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return model{
		state:     StateWelcome,
		pathInput: pathInput,
		spinner:   s,
		outputDir: "./recovered",
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.state != StateEnterPath {
				return m, tea.Quit
			}
		case "esc":
			if m.state == StateEnterPath {
				m.state = StateSelectDevice
				return m, nil
			}
			if m.state == StateBrowsing && m.currentDir != "" {
				m.currentDir = path.Dir(m.currentDir)
				if m.currentDir == "." {
					m.currentDir = ""
				}
				return m, m.loadEntries()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.entryList.SetSize(msg.Width-4, msg.Height-10)
		m.deviceList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case devicesLoadedMsg:
		items := make([]list.Item, 0, len(msg.devices)+1)
		items = append(items, deviceItem{manual: true})
		for _, d := range msg.devices {
			items = append(items, deviceItem{device: d})
		}
		m.deviceList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-10)
		m.deviceList.Title = "Select a device or image"
		m.deviceList.SetShowStatusBar(false)
		return m, nil

	case volumeMountedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.volume = msg.volume
		m.state = StateBrowsing
		return m, m.loadEntries()

	case entriesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = fileItem{view: e}
		}
		m.entryList = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-10)
		m.entryList.Title = "/" + m.currentDir
		m.entryList.SetShowStatusBar(false)
		return m, nil

	case extractCompleteMsg:
		m.state = StateResults
		m.err = msg.err
		m.statusMsg = fmt.Sprintf("Wrote %d bytes to %s", msg.size, msg.path)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch m.state {
	case StateWelcome:
		return m.updateWelcome(msg)
	case StateSelectDevice:
		return m.updateSelectDevice(msg)
	case StateEnterPath:
		return m.updateEnterPath(msg)
	case StateBrowsing:
		return m.updateBrowsing(msg)
	case StateResults:
		return m.updateResults(msg)
	}

	return m, nil
}

func (m model) updateWelcome(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		m.state = StateSelectDevice
		return m, m.loadDevices()
	}
	return m, nil
}

func (m model) updateSelectDevice(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		selected := m.deviceList.SelectedItem()
		if selected == nil {
			return m, nil
		}
		item := selected.(deviceItem)
		if item.manual {
			m.state = StateEnterPath
			return m, nil
		}
		m.imagePath = item.device.Path
		m.statusMsg = "Mounting volume..."
		return m, m.mountVolume()
	}

	var cmd tea.Cmd
	m.deviceList, cmd = m.deviceList.Update(msg)
	return m, cmd
}

func (m model) loadDevices() tea.Cmd {
	return func() tea.Msg {
		devices, err := device.List()
		if err != nil {
			return devicesLoadedMsg{devices: nil}
		}
		return devicesLoadedMsg{devices: devices}
	}
}

func (m model) updateEnterPath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		path := m.pathInput.Value()
		if path == "" {
			return m, nil
		}
		m.imagePath = path
		m.statusMsg = "Mounting volume..."
		return m, m.mountVolume()
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m model) updateBrowsing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		selected := m.entryList.SelectedItem()
		if selected == nil {
			return m, nil
		}
		item := selected.(fileItem)
		if item.view.IsDirectory {
			m.currentDir = path.Join(m.currentDir, item.view.Name)
			return m, m.loadEntries()
		}
		m.state = StateExtracting
		return m, tea.Batch(m.spinner.Tick, m.extractFile(item.view.Name))
	}

	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

func (m model) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "q":
			m.state = StateBrowsing
			m.err = nil
			return m, nil
		}
	}
	return m, nil
}

func (m model) mountVolume() tea.Cmd {
	return func() tea.Msg {
		v, err := ntfs.Mount(m.imagePath)
		return volumeMountedMsg{volume: v, err: err}
	}
}

func (m model) loadEntries() tea.Cmd {
	volume := m.volume
	dir := m.currentDir
	return func() tea.Msg {
		entries, err := volume.ListFiles(dir)
		return entriesLoadedMsg{entries: entries, err: err}
	}
}

func (m model) extractFile(name string) tea.Cmd {
	volume := m.volume
	filePath := path.Join(m.currentDir, name)
	outputDir := m.outputDir
	return func() tea.Msg {
		data, err := volume.ExtractFile(filePath)
		if err != nil {
			return extractCompleteMsg{err: err}
		}
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return extractCompleteMsg{err: err}
		}
		dest := outputDir + "/" + name
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return extractCompleteMsg{err: err}
		}
		return extractCompleteMsg{path: dest, size: len(data)}
	}
}

func (m model) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render(" NTFS Volume Browser "))
	s.WriteString("\n\n")

	switch m.state {
	case StateWelcome:
		s.WriteString(m.viewWelcome())
	case StateSelectDevice:
		s.WriteString(m.deviceList.View())
	case StateEnterPath:
		s.WriteString(m.viewEnterPath())
	case StateBrowsing:
		s.WriteString(m.entryList.View())
	case StateExtracting:
		s.WriteString(m.spinner.View())
		s.WriteString(" Extracting...")
	case StateResults:
		s.WriteString(m.viewResults())
	}

	if m.err != nil {
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press q to quit • esc to go up a directory"))

	return s.String()
}

func (m model) viewWelcome() string {
	var s strings.Builder
	s.WriteString(subtitleStyle.Render("Welcome to the NTFS Volume Browser"))
	s.WriteString("\n\n")
	s.WriteString("Browse a mounted NTFS image and extract files interactively.\n")
	s.WriteString("The image is opened READ-ONLY.\n\n")
	s.WriteString(selectedStyle.Render("Press Enter to continue..."))
	return s.String()
}

func (m model) viewEnterPath() string {
	var s strings.Builder
	s.WriteString(subtitleStyle.Render("Enter Disk Image Path"))
	s.WriteString("\n\n")
	s.WriteString(m.pathInput.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press Enter to mount"))
	return s.String()
}

func (m model) viewResults() string {
	var s strings.Builder
	if m.err != nil {
		s.WriteString(errorStyle.Render("Extraction Failed"))
	} else {
		s.WriteString(successStyle.Render("✓ " + m.statusMsg))
	}
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press Enter to go back to browsing"))
	return s.String()
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
