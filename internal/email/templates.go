package email

import (
	htmltemplate "html/template"
	texttemplate "text/template"
)

var (
	baseTemplate = htmltemplate.Must(htmltemplate.New("base").Parse(baseEmailTemplate))

	orderConfirmationTemplate = htmltemplate.Must(
		htmltemplate.New("order_confirmation").Funcs(templateFuncs).Parse(orderConfirmationContent))
	orderConfirmationTextTemplate = texttemplate.Must(
		texttemplate.New("order_confirmation_text").Funcs(templateFuncs).Parse(orderConfirmationText))

	cartRecoveryTemplate = htmltemplate.Must(
		htmltemplate.New("cart_recovery").Funcs(templateFuncs).Parse(cartRecoveryContent))
	cartRecoveryTextTemplate = texttemplate.Must(
		texttemplate.New("cart_recovery_text").Funcs(templateFuncs).Parse(cartRecoveryText))
)

// baseEmailTemplate is the shared outer layout.
const baseEmailTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .container {
            background-color: white;
            padding: 30px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .header {
            text-align: center;
            border-bottom: 3px solid #4CAF50;
            padding-bottom: 20px;
            margin-bottom: 30px;
        }
        .items-table {
            width: 100%;
            border-collapse: collapse;
            margin: 20px 0;
        }
        .items-table th {
            background-color: #4CAF50;
            color: white;
            padding: 12px;
            text-align: left;
            font-weight: 600;
        }
        .items-table td {
            padding: 12px;
            border-bottom: 1px solid #eee;
        }
        .cta-button {
            display: inline-block;
            background-color: #4CAF50;
            color: white !important;
            padding: 14px 28px;
            border-radius: 5px;
            text-decoration: none;
            font-weight: 600;
            margin: 20px 0;
        }
        .wallet-buttons a {
            display: inline-block;
            margin: 0 8px;
            text-decoration: none;
            font-weight: 600;
        }
        .footer {
            text-align: center;
            color: #999;
            font-size: 12px;
            margin-top: 30px;
        }
    </style>
</head>
<body>
    <div class="container">
{{.Content}}
    </div>
</body>
</html>`

// orderConfirmationContent is the content section of the order
// confirmation email.
const orderConfirmationContent = `
        <div class="header">
            {{if .LogoURL}}<img src="{{.LogoURL}}" alt="" style="max-height: 60px; margin-bottom: 10px;"><br>{{end}}
            <h1>Your tickets are confirmed</h1>
        </div>
        <p>Hi {{.CustomerName}},</p>
        <p>Thanks for your order <strong>{{.OrderNumber}}</strong>. Your tickets for
           <strong>{{.EventName}}</strong> are attached to this email as a PDF.</p>
        <p><strong>{{.EventDate}}</strong>{{if .Venue}} &mdash; {{.Venue}}{{end}}</p>
        <table class="items-table">
            <tr><th>Ticket</th><th>Type</th><th>Code</th></tr>
            {{range .Tickets}}
            <tr>
                <td>{{if .HolderName}}{{.HolderName}}{{else}}Guest{{end}}{{if .MerchName}}<br><small>{{.MerchName}}{{if .MerchSize}} ({{.MerchSize}}){{end}}</small>{{end}}</td>
                <td>{{.TicketType}}</td>
                <td>{{.Code}}</td>
            </tr>
            {{end}}
        </table>
        <p>Total: <strong>{{FormatMoney .TotalCents .Currency}}</strong></p>
        {{if .VAT}}
        <p style="color: #777; font-size: 13px;">Includes VAT ({{printf "%.1f" .VAT.Rate}}%): {{FormatMoney .VAT.AmountCents .Currency}}{{if .VAT.Number}} &mdash; VAT No. {{.VAT.Number}}{{end}}</p>
        {{end}}
        {{if .WalletLinks}}
        <div class="wallet-buttons" style="text-align: center;">
            {{if .WalletLinks.GoogleWalletURL}}<a href="{{.WalletLinks.GoogleWalletURL}}">Add to Google Wallet</a>{{end}}
            {{if .WalletLinks.AppleWalletURL}}<a href="{{.WalletLinks.AppleWalletURL}}">Add to Apple Wallet</a>{{end}}
        </div>
        {{end}}
        <div class="footer">
            <p>Questions about your order? Just reply to this email.</p>
        </div>`

const orderConfirmationText = `Hi {{.CustomerName}},

Thanks for your order {{.OrderNumber}}. Your tickets for {{.EventName}} are attached as a PDF.

{{.EventDate}}{{if .Venue}} - {{.Venue}}{{end}}

Tickets:
{{range .Tickets}}- {{.TicketType}} ({{.Code}}){{if .HolderName}} for {{.HolderName}}{{end}}
{{end}}
Total: {{FormatMoney .TotalCents .Currency}}
{{if .WalletLinks}}{{if .WalletLinks.GoogleWalletURL}}
Add to Google Wallet: {{.WalletLinks.GoogleWalletURL}}{{end}}{{if .WalletLinks.AppleWalletURL}}
Add to Apple Wallet: {{.WalletLinks.AppleWalletURL}}{{end}}
{{end}}`

// cartRecoveryContent is the content section of the staged cart recovery
// email. Copy fields come from the stage configuration.
const cartRecoveryContent = `
        {{if .PreviewText}}<div style="display: none; max-height: 0; overflow: hidden;">{{.PreviewText}}</div>{{end}}
        <div class="header">
            {{if .LogoURL}}<img src="{{.LogoURL}}" alt="" style="max-height: 60px; margin-bottom: 10px;"><br>{{end}}
            <h1>{{.Subject}}</h1>
        </div>
        <p>{{.Greeting}}</p>
        {{if .Body}}<p>{{.Body}}</p>{{else}}<p>Your tickets for <strong>{{.EventName}}</strong> are still waiting for you.</p>{{end}}
        {{if .Items}}
        <table class="items-table">
            <tr><th>Item</th><th>Qty</th><th>Price</th></tr>
            {{range .Items}}
            <tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{FormatMoney .UnitPriceCents $.Currency}}</td></tr>
            {{end}}
        </table>
        <p>Subtotal: <strong>{{FormatMoney .SubtotalCents .Currency}}</strong></p>
        {{end}}
        {{if .DiscountCode}}
        <p style="background-color: #fff8e1; padding: 12px; border-radius: 5px;">
            {{if .DiscountLabel}}{{.DiscountLabel}}{{else}}Use this code at checkout:{{end}}
            <strong>{{.DiscountCode}}</strong>
        </p>
        {{end}}
        <div style="text-align: center;">
            <a class="cta-button" href="{{.RecoveryURL}}">{{.CTALabel}}</a>
        </div>
        <div class="footer">
            <p><a href="{{.UnsubscribeURL}}">Unsubscribe</a> from cart reminders.</p>
        </div>`

const cartRecoveryText = `{{.Greeting}}

{{if .Body}}{{.Body}}{{else}}Your tickets for {{.EventName}} are still waiting for you.{{end}}
{{if .Items}}
Your cart:
{{range .Items}}- {{.Name}} x{{.Quantity}} ({{FormatMoney .UnitPriceCents $.Currency}})
{{end}}
Subtotal: {{FormatMoney .SubtotalCents .Currency}}
{{end}}{{if .DiscountCode}}
{{if .DiscountLabel}}{{.DiscountLabel}}{{else}}Use this code at checkout:{{end}} {{.DiscountCode}}
{{end}}
{{.CTALabel}}: {{.RecoveryURL}}

Unsubscribe from cart reminders: {{.UnsubscribeURL}}`
