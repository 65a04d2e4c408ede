package server

// indexPage is served on the index route. The form posts a single
// message=<value> field.
const indexPage = `<html>
    <head></head>
    <body>
        <form action="/message" method="POST">
            <input name='message' type="text">
            <button type="submit">Send</button>
        </form>
    </body>
</html>
`
