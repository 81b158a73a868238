// Package translation talks to machine translation backends. It provides a
// small Translator interface with Google Translate, Ollama, OpenAI and
// Gemini implementations, and a Client that retries failed requests and
// degrades to the untranslated text instead of failing a run.
package translation
