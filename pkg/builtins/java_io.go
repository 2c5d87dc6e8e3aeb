package builtins

// JavaIOInitializer seeds the java.io types the language itself refers to.
type JavaIOInitializer struct{}

func (j *JavaIOInitializer) Name() string  { return "java.io" }
func (j *JavaIOInitializer) Priority() int { return PriorityJavaIO }

var javaIOStubs = []Stub{
	{Header: "public interface Serializable"},
	{Header: "public interface Closeable extends AutoCloseable", Members: []string{
		"void close() throws IOException",
	}},
	{Header: "public interface Flushable", Members: []string{
		"void flush() throws IOException",
	}},
	{Header: "public class IOException extends Exception", Members: []string{
		"public IOException()",
		"public IOException(String)",
	}},
	{Header: "public class UncheckedIOException extends RuntimeException", Members: []string{
		"public UncheckedIOException(String, IOException)",
	}},
}

func (j *JavaIOInitializer) DeclareTypes(ctx *TypeContext) error {
	return ctx.declareStubs("java.io", javaIOStubs)
}

func (j *JavaIOInitializer) InitMembers(ctx *TypeContext) error {
	return ctx.completeStubs("java.io", javaIOStubs)
}
