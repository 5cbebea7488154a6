package utils

import (
	"fmt"
	"time"
)

func SendBudgetAlertEmail(to, firstName, categoryName, spent, limit, percent, status string) error {
	subject := fmt.Sprintf("⚠️ Budget Alert: '%s' is at %s%% of its limit", categoryName, percent)
	if status == "over" {
		subject = fmt.Sprintf("🚨 Budget Exceeded: '%s' is over its limit", categoryName)
	}

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Budget Alert</title>
	<style>
		body {
			font-family: 'Segoe UI', Roboto, Arial, sans-serif;
			background-color: #f6f8f7;
			margin: 0;
			padding: 0;
			color: #333;
		}
		.container {
			max-width: 480px;
			margin: 25px auto;
			background: #ffffff;
			border-radius: 12px;
			box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
			overflow: hidden;
			border-top: 5px solid #e0a43a;
		}
		.header {
			background-color: #e0a43a;
			color: #ffffff;
			text-align: center;
			padding: 18px 12px;
		}
		.header h1 {
			margin: 0;
			font-size: 18px;
			font-weight: 600;
		}
		.content {
			padding: 20px 18px;
		}
		.message {
			font-size: 14px;
			line-height: 1.6;
			color: #444;
		}
		.amount-box {
			background: #fdf8ee;
			border: 1px solid #efd9a7;
			border-radius: 8px;
			padding: 12px 14px;
			margin: 16px 0;
			text-align: center;
		}
		.amount-box h3 {
			margin: 0;
			color: #c28418;
			font-size: 16px;
			font-weight: 700;
		}
		.amount-box p {
			margin: 6px 0 0;
			font-size: 13px;
			color: #555;
		}
		.footer {
			background: #f6f6f6;
			text-align: center;
			padding: 14px;
			font-size: 12px;
			color: #777;
			border-top: 1px solid #e5e5e5;
		}
		.brand {
			color: #0a4d3c;
			font-weight: bold;
		}
	</style>
	</head>

	<body>
		<div class="container">
			<div class="header">
				<h1>Budget Alert 📊</h1>
			</div>
			<div class="content">
				<p class="message">
					Hi %s,<br><br>
					Your <b>%s</b> budget has reached <b>%s%%</b> of its limit
					for the current period.
				</p>

				<div class="amount-box">
					<h3>%s spent of %s</h3>
					<p>Category: %s</p>
					<p>Status: %s</p>
				</div>

				<p class="message">
					Log in to <b>Splitkeeper</b> to review your spending for this period.
				</p>
			</div>
			<div class="footer">
				&copy; %d <span class="brand">Splitkeeper</span> — Every Share Accounted For.
			</div>
		</div>
	</body>
	</html>
	`, firstName, categoryName, percent, spent, limit, categoryName, status, time.Now().Year())

	return SendEmail(to, subject, body)
}
