package portal

// Minimal server-rendered pages. The portal is an operator tool, not a
// public site; plain HTML keeps the binary self-contained.

const homePage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>gymgate · front desk</title></head>
<body>
<h1>Front desk</h1>
<ul>
  <li><a href="/session">Current session</a></li>
  <li>
    <form method="post" action="/logout"><button type="submit">Sign out</button></form>
  </li>
</ul>
<h2>Member check-in</h2>
<p>POST a scanned QR code to <code>/attendance/checkin</code>.</p>
</body>
</html>
`

const loginPage = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>gymgate · sign in</title></head>
<body>
<h1>Front desk sign in</h1>
<form method="post" action="/login">
  <label>Email <input type="email" name="email" autocomplete="username" required></label>
  <label>Password <input type="password" name="password" autocomplete="current-password" required></label>
  <button type="submit">Sign in</button>
</form>
</body>
</html>
`

const loginPageError = `<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>gymgate · sign in</title></head>
<body>
<h1>Front desk sign in</h1>
<p>Sign in failed. Check the email and password and try again.</p>
<form method="post" action="/login">
  <label>Email <input type="email" name="email" autocomplete="username" required></label>
  <label>Password <input type="password" name="password" autocomplete="current-password" required></label>
  <button type="submit">Sign in</button>
</form>
</body>
</html>
`
