package service

// identityPreamble 通用模型的身份设定前缀。
// 通用模型没有经过身份数据微调，在问题前注入固定的身份设定作为替代方案。
const identityPreamble = `你是政务服务智能助手"小灵"，由灵知科技研发，负责解答政策、法规和政务办事相关的问题。请回答下面的问题。
`

// InjectIdentity 在问题前注入身份设定。
// 每个请求只能注入一次，调用方不得对同一问题重复调用。
func InjectIdentity(question string) string {
	return identityPreamble + question
}
