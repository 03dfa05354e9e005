package a

import "demo/monitor/checked"

func inOrder() {
	m := checked.New()
	_ = m.Connect()
	_ = m.Fetch()
	_, _ = m.Display()
}

func fetchFirst() {
	m := checked.New()
	_ = m.Fetch() // want "Fetch called on m before Connect"
}

func displayFirst() {
	m := checked.New()
	_ = m.Connect()
	_, _ = m.Display() // want "Display called on m before Fetch"
}

func afterClose() {
	m := checked.New()
	_ = m.Connect()
	m.Close()
	_ = m.Fetch() // want "Fetch called on m before Connect"
}

func closeThenDisplay() {
	m := checked.New()
	_ = m.Connect()
	_ = m.Fetch()
	m.Close()
	_, _ = m.Display()
}

func reassigned() {
	var m *checked.Monitor
	m = checked.New()
	_ = m.Connect()
	_ = m.Fetch()
	m = checked.New()
	_, _ = m.Display() // want "Display called on m before Fetch"
}

func untracked(m *checked.Monitor) {
	_ = m.Fetch()
}

func suppressed() {
	m := checked.New()
	_ = m.Fetch() // phaseorder:ignore
}
