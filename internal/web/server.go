package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/vadiminshakov/taobook/internal/domain"
)

const rowPollInterval = 2 * time.Second

type reportRowReader interface {
	RowsAfter(index uint64) ([]domain.ReportRowRecord, error)
}

// Server exposes HTTP endpoints serving the HTML dashboard and an SSE
// stream of report rows.
type Server struct {
	Addr  string
	Store reportRowReader
}

// NewServer creates a new web server instance.
func NewServer(addr string, store reportRowReader) *Server {
	return &Server{Addr: addr, Store: store}
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/report/stream", s.handleReportStream)

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func (s *Server) handleReportStream(w http.ResponseWriter, r *http.Request) {
	if s.Store == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "report store not available")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// send a comment heartbeat every 30s so proxies keep connection
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(rowPollInterval)
	defer pollTicker.Stop()

	lastIndex := uint64(0)
	sendRows := func() error {
		records, err := s.Store.RowsAfter(lastIndex)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		for _, record := range records {
			payload, err := json.Marshal(record.Row)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "event: report_row\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendRows(); err != nil {
		http.Error(w, "failed to load report rows", http.StatusInternalServerError)
		log.Printf("report stream initial load: %v", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendRows(); err != nil {
				log.Printf("report stream poll err: %v", err)
			}
		}
	}
}

// Dashboard with an inventory chart plus the daily accounting table.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Taobook</title>
  <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
  <link rel="preconnect" href="https://fonts.googleapis.com">
  <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
  <link href="https://fonts.googleapis.com/css2?family=Press+Start+2P&family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --ink-soft:#9c9c9c;
      --panel:#f6f6f6;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      display:flex;
      align-items:flex-start;
      justify-content:center;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    #app {
      width:min(1400px, 96vw);
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
      display:flex;
      flex-direction:column;
      gap:2rem;
    }
    header { display:flex; justify-content:space-between; align-items:flex-start; gap:1rem; }
    .eyebrow {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.55rem;
      text-transform:uppercase;
      letter-spacing:.2em;
      margin:0;
    }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#ffffff;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    .chart-box {
      width:100%;
      border:2px solid var(--ink);
      background:#fff;
    }
    .summary {
      display:grid;
      grid-template-columns:repeat(auto-fit, minmax(200px, 1fr));
      gap:1rem;
    }
    .stat {
      border:3px solid var(--ink);
      padding:1.2rem;
      background:#fff;
      box-shadow:6px 6px 0 rgba(0,0,0,.12);
    }
    .stat .label {
      font-size:.62rem;
      text-transform:uppercase;
      letter-spacing:.2em;
      color:var(--ink-mid);
    }
    .stat .value {
      margin-top:.8rem;
      font-size:1.4rem;
      font-weight:700;
      letter-spacing:.08em;
    }
    table {
      width:100%;
      border-collapse:collapse;
      font-size:.68rem;
      background:#fff;
      border:2px solid var(--ink);
    }
    th, td {
      padding:.5rem .6rem;
      border-bottom:1px solid rgba(0,0,0,.12);
      text-align:right;
      white-space:nowrap;
    }
    th {
      text-transform:uppercase;
      letter-spacing:.1em;
      font-size:.55rem;
      border-bottom:2px solid var(--ink);
    }
    th:first-child, td:first-child { text-align:left; }
    td.neg { color:#d7263d; }
    .empty-state {
      border:2px dashed var(--ink-soft);
      padding:2rem;
      text-align:center;
      font-size:.8rem;
      letter-spacing:.12em;
      text-transform:uppercase;
      color:var(--ink-mid);
    }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <p class="eyebrow">taobook daily report</p>
      <div id="sse-status" class="status">Connecting…</div>
    </header>
    <section class="summary">
      <div class="stat"><div class="label">Ending inventory</div><div class="value" id="statInventory">0</div></div>
      <div class="stat"><div class="label">Total revenue</div><div class="value" id="statRevenue">0</div></div>
      <div class="stat"><div class="label">Total loss</div><div class="value" id="statLoss">0</div></div>
      <div class="stat"><div class="label">Days reported</div><div class="value" id="statDays">0</div></div>
    </section>
    <section>
      <canvas id="inventoryChart" class="chart-box" height="280"></canvas>
    </section>
    <section>
      <div id="emptyState" class="empty-state">Waiting for report rows…</div>
      <table id="reportTable" style="display:none">
        <thead>
          <tr>
            <th>Day</th><th>Begin inv</th><th>Received</th><th>Sold</th>
            <th>Revenue</th><th>COGS</th><th>Gross profit</th><th>Loss</th>
            <th>End inv</th><th>Margin %</th>
          </tr>
        </thead>
        <tbody id="reportBody"></tbody>
      </table>
    </section>
  </div>
<script>
const statusEl = document.getElementById('sse-status');
const tableEl = document.getElementById('reportTable');
const bodyEl = document.getElementById('reportBody');
const emptyState = document.getElementById('emptyState');

Chart.defaults.font.family = "'Space Mono', 'JetBrains Mono', monospace";
Chart.defaults.font.size = 11;
Chart.defaults.color = '#111111';

const chart = new Chart(document.getElementById('inventoryChart').getContext('2d'), {
  type: 'line',
  data: { labels: [], datasets: [
    { label:'Ending inventory', data:[], borderColor:'#111111', backgroundColor:'rgba(17,17,17,0.12)', borderWidth:2, pointRadius:0, tension:0.15 },
    { label:'Gross profit', data:[], borderColor:'#1b9aaa', backgroundColor:'rgba(27,154,170,0.15)', borderWidth:2, pointRadius:0, tension:0.15 }
  ]},
  options: {
    animation:false,
    responsive:true,
    interaction:{ intersect:false, mode:'index' },
    plugins:{ legend:{ display:true, labels:{ usePointStyle:true, boxWidth:12 } } }
  }
});

const num = (v) => {
  const n = parseFloat(v);
  return Number.isFinite(n) ? n : 0;
};

let totals = { revenue:0, loss:0, days:0, inventory:0 };

function cell(value, signed){
  const td = document.createElement('td');
  const n = num(value);
  td.textContent = n.toFixed(2);
  if(signed && n < 0){ td.classList.add('neg'); }
  return td;
}

function handleRow(row){
  if(emptyState.style.display !== 'none'){
    emptyState.style.display = 'none';
    tableEl.style.display = '';
  }

  const tr = document.createElement('tr');
  const day = document.createElement('td');
  day.textContent = row.timestamp.slice(0, 10);
  tr.appendChild(day);
  tr.appendChild(cell(row.beginning_inventory));
  tr.appendChild(cell(row.received));
  tr.appendChild(cell(row.sold_quantity));
  tr.appendChild(cell(row.daily_revenue));
  tr.appendChild(cell(row.daily_cogs));
  tr.appendChild(cell(row.gross_profit, true));
  tr.appendChild(cell(row.total_loss));
  tr.appendChild(cell(row.ending_inventory));
  tr.appendChild(cell(row.gross_margin_percentage, true));
  bodyEl.insertBefore(tr, bodyEl.firstChild);

  totals.revenue += num(row.daily_revenue);
  totals.loss += num(row.total_loss);
  totals.days += 1;
  totals.inventory = num(row.ending_inventory);

  document.getElementById('statInventory').textContent = totals.inventory.toFixed(2);
  document.getElementById('statRevenue').textContent = totals.revenue.toFixed(2);
  document.getElementById('statLoss').textContent = totals.loss.toFixed(2);
  document.getElementById('statDays').textContent = totals.days;

  chart.data.labels.push(row.timestamp.slice(0, 10));
  chart.data.datasets[0].data.push(num(row.ending_inventory));
  chart.data.datasets[1].data.push(num(row.gross_profit));
  chart.update('none');
}

function connectSSE(){
  const source = new EventSource('/report/stream');
  statusEl.textContent = 'Status: receiving data';
  source.addEventListener('report_row', (event) => {
    try{
      handleRow(JSON.parse(event.data));
    }catch(err){
      console.error('payload parse', err);
    }
  });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

connectSSE();
</script>
</body>
</html>`
