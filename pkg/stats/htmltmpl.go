//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

package stats

import (
	"bytes"
	"html/template"
	"strings"
	"time"
)

var (
	kHtmlDefaultCSS = HtmlElem("style", `
body {
  font-family: 'lato', sans-serif;
  font-size: 12px;
}
h1 {
    font-size: 32px;
    font-weight: 400;
}
h2 {
    font-size: 24px;
    font-weight: 500;
    color: #375EAB;
}
table {
    border-collapse: collapse;
}

th, td {
    text-align: right;
    padding: 8px;
}

tr:nth-child(even){background-color: #E6EAF2}
tr:nth-child(odd){background-color: #EBF5FB}

th {
    background-color: #2F72B1;
    color: white;
}
header {
    padding: 1em;
    color: white;
    background-color:  #2C5893;
    text-align: center;
}
`)

	HtmlStatsTmpl = template.Must(template.New("html-stats-page").Parse(`<!DOCTYPE html>
<html>

<head>
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{ .Title }}</title>
` + kHtmlDefaultCSS + `
</head>
<body>

<header>
<h1> {{.Title }} </h1>
<p style="text-align:left;"><font size="2"> {{.Source}}
<span style="float:right;">{{ .Version }} </font></span>
</p>
</header>

{{range .Sections}}
		<h2> {{.Title}} </h2>
		{{.Body}}
{{end}}
</body>
</html>`))
)

func HtmlElem(tagName string, code string) string {
	var buf bytes.Buffer
	buf.WriteByte('<')
	buf.WriteString(tagName)
	buf.WriteString(">\n")
	buf.WriteString(code)
	buf.WriteString("</")
	buf.WriteString(tagName)
	buf.WriteString(">\n")
	return buf.String()
}

func HtmlDurationEscapeString(d time.Duration) string {
	return strings.Replace(d.String(), "µs", "&#181;s", 1)
}
