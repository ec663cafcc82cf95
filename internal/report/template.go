package report

const reportHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Market report: {{.Query}}</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }
    .container { max-width: 1080px; margin: 0 auto; }
    header {
      padding: 20px 24px;
      border-radius: 8px;
      background: linear-gradient(135deg, #1f2937 0%, #374151 100%);
      color: #ffffff;
    }
    header h1 { margin: 0 0 4px 0; font-size: 24px; }
    .meta { font-size: 13px; color: #d1d5db; }
    .badge {
      display: inline-block;
      padding: 2px 8px;
      border-radius: 999px;
      font-size: 12px;
      font-weight: 600;
      text-transform: uppercase;
    }
    .badge-live { background: #047857; color: #ffffff; }
    .badge-mock { background: #b45309; color: #ffffff; }
    .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(150px, 1fr)); gap: 12px; margin: 16px 0; }
    .card { background: #ffffff; border: 1px solid #e5e7eb; border-radius: 8px; padding: 16px; }
    .kpi-label { font-size: 12px; color: #6b7280; text-transform: uppercase; letter-spacing: 0.04em; }
    .kpi-value { font-size: 22px; font-weight: 700; }
    .row { display: grid; grid-template-columns: 2fr 1fr; gap: 12px; margin-bottom: 16px; }
    h2 { font-size: 16px; margin: 0 0 12px 0; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td { text-align: left; padding: 8px; border-bottom: 1px solid #e5e7eb; }
    th { color: #6b7280; font-weight: 600; }
    td.num, th.num { text-align: right; }
    .muted { color: #6b7280; }
    .empty { text-align: center; padding: 48px 16px; }
    footer { margin-top: 16px; font-size: 12px; color: #6b7280; text-align: center; }
  </style>
</head>
<body>
<div class="container">
  <header>
    <h1>{{.Query}}</h1>
    <div class="meta">
      <span class="badge {{if .IsMock}}badge-mock{{else}}badge-live{{end}}">{{.DataSource}} data</span>
      &nbsp;{{.ProductCount}} products{{if .SkippedCount}}, {{.SkippedCount}} skipped{{end}}
      &nbsp;&middot;&nbsp;Generated {{.GeneratedAt}}
    </div>
  </header>
{{if not .HasData}}
  <section class="card empty">
    <h2>No data found</h2>
    <p class="muted">No listings were found for this query.</p>
  </section>
{{else}}
  <section class="grid">
    {{range .KPIs}}<div class="card"><div class="kpi-label">{{.Label}}</div><div class="kpi-value">{{.Value}}</div></div>
    {{end}}
  </section>

  <section class="row">
    <div class="card">
      <h2>Price index trend ({{.TrendDirection}}, {{.TrendChange}})</h2>
      <canvas id="trendChart" height="120"></canvas>
    </div>
    <div class="card">
      <h2>Sentiment: {{.SentimentLabel}}</h2>
      {{if .HasSentiment}}<canvas id="sentimentChart" height="160"></canvas>{{end}}
      <table>
        <tr><td>Score</td><td class="num">{{.SentimentScore}}</td></tr>
        <tr><td>Rated products</td><td class="num">{{.SentimentSample}}</td></tr>
        <tr><td>Average rating</td><td class="num">{{.AverageRating}}</td></tr>
        <tr><td>Positive / neutral / negative</td><td class="num">{{index .SentimentCounts 0}} / {{index .SentimentCounts 1}} / {{index .SentimentCounts 2}}</td></tr>
        <tr><td>Share</td><td class="num">{{index .SentimentShares 0}} / {{index .SentimentShares 1}} / {{index .SentimentShares 2}}</td></tr>
      </table>
    </div>
  </section>

  <section class="row">
    <div class="card">
      <h2>Executive summary</h2>
      <p>{{.Narrative.ExecutiveSummary}}</p>
      {{if .Narrative.Recommendations}}<h2>Recommendations</h2>
      <ul>
        {{range .Narrative.Recommendations}}<li>{{.}}</li>
        {{end}}
      </ul>{{end}}
    </div>
    <div class="card">
      <h2>Price and quality</h2>
      <p>{{.CorrelationInsight}} <span class="muted">(r = {{.Correlation}})</span></p>
      <p>Segment: <strong>{{.Segment}}</strong></p>
      {{with .BestValue}}<h2>Best value</h2>
      <p><strong>{{.Title}}</strong><br />{{.Price}} &middot; rated {{.Rating}} ({{.RatingCount}} ratings){{if .Seller}} &middot; {{.Seller}}{{end}}</p>{{end}}
    </div>
  </section>

  <section class="card">
    <h2>Listings</h2>
    <table>
      <tr><th>#</th><th>Product</th><th>Seller</th><th class="num">Price</th><th class="num">Rating</th><th class="num">Ratings</th></tr>
      {{range $i, $p := .Products}}<tr><td>{{inc $i}}</td><td>{{if $p.URL}}<a href="{{$p.URL}}">{{$p.Title}}</a>{{else}}{{$p.Title}}{{end}}</td><td>{{$p.Seller}}</td><td class="num">{{$p.Price}}</td><td class="num">{{$p.Rating}}</td><td class="num">{{$p.RatingCount}}</td></tr>
      {{end}}
    </table>
  </section>

  <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"></script>
  <script>
    new Chart(document.getElementById("trendChart"), {
      type: "line",
      data: { labels: {{.TrendLabels}}, datasets: [{ label: "Price index", data: {{.TrendValues}}, tension: 0.3, borderColor: "#2563eb" }] },
      options: { plugins: { legend: { display: false } } }
    });
    {{if .HasSentiment}}new Chart(document.getElementById("sentimentChart"), {
      type: "doughnut",
      data: { labels: ["positive", "neutral", "negative"], datasets: [{ data: {{.SentimentCounts}}, backgroundColor: ["#10b981", "#9ca3af", "#ef4444"] }] }
    });{{end}}
  </script>
{{end}}
  <footer>{{if .Narrative.LLMUsed}}Summary written by a language model from the figures above.{{else}}Summary generated from the figures above.{{end}} The price index trend is simulated.</footer>
</div>
</body>
</html>
`
