// Package langchaingo provides document signature tools for the
// tmc/langchaingo AI agent framework.
//
// # Available Tools
//
//   - DocumentVerifierTool: checks a file or digest against a claimed signer
//     and answers with a JSON verdict.
//
// # Usage
//
//	engine, _ := verify.New(reg)
//	verifierTool := langchaingo.NewDocumentVerifierTool(engine)
//	agent := initialize.NewSingleActionAgent(llm, []tools.Tool{verifierTool})
//
// Langchaingo: https://github.com/tmc/langchaingo
package langchaingo
