package veriauth

import (
	"bytes"
	"html/template"
)

const (
	verifySubject = "Verify your email for account creation"
	otpSubject    = "Otp for verification"
)

var verifyEmailTpl = template.Must(template.New("verifyEmail").Parse(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Verify your email</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background: #fff; padding: 20px; border-radius: 8px;">
    <h2 style="color: #2E86C1;">Confirm your account</h2>
    <p>Hello {{.Email}},</p>
    <p>Click the link below to verify your email and finish creating your account.
       The link expires in 5 minutes.</p>
    <p><a href="{{.Link}}" style="color: #2E86C1;">Verify my email</a></p>
    <p>If you did not request this, you can ignore this mail.</p>
  </div>
</body>
</html>
`))

var otpEmailTpl = template.Must(template.New("otpEmail").Parse(`
<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Your one-time passcode</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
  <div style="max-width: 600px; margin: auto; background: #fff; padding: 20px; border-radius: 8px;">
    <h2 style="color: #2E86C1;">Your one-time passcode</h2>
    <p>Hello {{.Email}},</p>
    <p>Use the code below to finish signing in. It expires in 5 minutes.</p>
    <p style="font-size: 28px; letter-spacing: 4px;"><strong>{{.Code}}</strong></p>
    <p>If you did not try to sign in, change your password.</p>
  </div>
</body>
</html>
`))

func renderVerifyEmail(email, link string) (string, error) {
	var body bytes.Buffer
	err := verifyEmailTpl.Execute(&body, struct{ Email, Link string }{email, link})
	return body.String(), err
}

func renderOTPEmail(email, code string) (string, error) {
	var body bytes.Buffer
	err := otpEmailTpl.Execute(&body, struct{ Email, Code string }{email, code})
	return body.String(), err
}
