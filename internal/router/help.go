package router

const helpText = `Welcome to the MJ drawing bot
------------------------------
🎨 Drawing command
Type: /imagine prompt
prompt is your drawing request
------------------------------
📕 Prompt parameters
1. Meaning: flags appended after the prompt to shape the result
2. Example: /imagine prompt --ar 16:9
3. Usage: --key value, key and value separated by a space, multiple flags separated by spaces
------------------------------
📗 Available parameters
1. --v version 1,2,3,4,5 default 5, not combinable with niji
2. --niji cartoon version, empty or 5, default empty, not combinable with v
3. --ar aspect ratio n:n, default 1:1
4. --q quality .25 .5 1 2 for draft, clear, HD, ultra HD, default 1
5. --style (4a,4b,4c) for v4, (expressive,cute) for niji5
6. --s stylize 1-1000 (625-60000 for v3)`
