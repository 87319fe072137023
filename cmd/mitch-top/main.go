// mitch-top renders live order-book snapshots in the terminal: one row
// per inner bin, bid and ask volume side by side, refreshed as frames
// arrive.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/btr-supply/mitch"
	"github.com/btr-supply/mitch/internal/nats"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var (
	natsServers = flag.String("servers", "nats://localhost:4222", "NATS URLs")
	subjectFlag = flag.String("subject", "mitch.*.b", "NATS subject filter for book feeds")
	binsFlag    = flag.Int("bins", 24, "inner bins to display per side")
)

func main() {
	flag.Parse()
	servers := strings.Split(*natsServers, ",")
	rows := *binsFlag
	if rows < 1 || rows > mitch.BinsPerSide {
		rows = 24
	}

	app := tview.NewApplication()
	table := tview.NewTable().SetBorders(false)
	table.SetTitle(" mitch-top ").SetBorder(true)
	renderHeader(table)

	conn := nats.Connect(servers, "mitch-top")
	defer conn.Close()

	sub, err := conn.Subscribe(*subjectFlag, func(subject string, frame []byte) {
		msg, err := mitch.Decode(frame)
		if err != nil || len(msg.Books) == 0 {
			return
		}
		book := msg.Books[len(msg.Books)-1]
		app.QueueUpdateDraw(func() {
			render(table, subject, &book, rows)
		})
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	if err := app.SetRoot(table, true).Run(); err != nil {
		log.Fatalf("ui: %v", err)
	}
}

func renderHeader(table *tview.Table) {
	for col, name := range []string{"bin", "bid px", "bid vol", "bid n", "ask px", "ask vol", "ask n"} {
		table.SetCell(0, col, tview.NewTableCell(name).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false).
			SetAlign(tview.AlignRight))
	}
}

func render(table *tview.Table, subject string, book *mitch.OrderBook, rows int) {
	tab, err := mitch.CurveTable(book.Curve)
	if err != nil {
		return
	}
	table.SetTitle(fmt.Sprintf(" %s  %v  mid=%.2f  curve=%v ", subject, book.InstrumentID, book.MidPrice, book.Curve))
	for i := 0; i < rows; i++ {
		bid := book.Bids[i]
		ask := book.Asks[i]
		cells := []struct {
			text  string
			color tcell.Color
		}{
			{fmt.Sprintf("%d", i), tcell.ColorWhite},
			{fmt.Sprintf("%.2f", tab.PriceForBin(book.MidPrice, mitch.Bid, i)), tcell.ColorGreen},
			{fmt.Sprintf("%d", bid.Volume), tcell.ColorGreen},
			{fmt.Sprintf("%d", bid.Count), tcell.ColorDarkGreen},
			{fmt.Sprintf("%.2f", tab.PriceForBin(book.MidPrice, mitch.Ask, i)), tcell.ColorRed},
			{fmt.Sprintf("%d", ask.Volume), tcell.ColorRed},
			{fmt.Sprintf("%d", ask.Count), tcell.ColorDarkRed},
		}
		for col, c := range cells {
			table.SetCell(i+1, col, tview.NewTableCell(c.text).
				SetTextColor(c.color).
				SetAlign(tview.AlignRight))
		}
	}
}
