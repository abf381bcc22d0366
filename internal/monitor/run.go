package monitor

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the view until the user quits or done is closed. Errors
// received on errs are displayed. It reports whether the user quit early.
func Run(src Source, info Info, done <-chan struct{}, errs <-chan error, opts ...tea.ProgramOption) (bool, error) {
	p := tea.NewProgram(NewModel(src, info), opts...)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			case <-done:
				p.Send(DoneMsg{})
				return
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				p.Send(StreamErrMsg{Err: err})
			}
		}
	}()

	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, _ := final.(Model)
	return m.Quit(), nil
}
