package builtins

// JavaFunctionInitializer seeds the common functional interfaces.
type JavaFunctionInitializer struct{}

func (j *JavaFunctionInitializer) Name() string  { return "java.util.function" }
func (j *JavaFunctionInitializer) Priority() int { return PriorityJavaFunction }

var javaFunctionStubs = []Stub{
	{Header: "public interface Function<T, R>", Members: []string{
		"R apply(T)",
		"default <V> Function<T, V> andThen(Function<? super R, ? extends V>)",
		"static <T> Function<T, T> identity()",
	}},
	{Header: "public interface BiFunction<T, U, R>", Members: []string{
		"R apply(T, U)",
	}},
	{Header: "public interface UnaryOperator<T> extends Function<T, T>", Members: []string{
		"static <T> UnaryOperator<T> identity()",
	}},
	{Header: "public interface BinaryOperator<T> extends BiFunction<T, T, T>"},
	{Header: "public interface Supplier<T>", Members: []string{
		"T get()",
	}},
	{Header: "public interface Consumer<T>", Members: []string{
		"void accept(T)",
		"default Consumer<T> andThen(Consumer<? super T>)",
	}},
	{Header: "public interface BiConsumer<T, U>", Members: []string{
		"void accept(T, U)",
	}},
	{Header: "public interface Predicate<T>", Members: []string{
		"boolean test(T)",
		"default Predicate<T> negate()",
		"default Predicate<T> and(Predicate<? super T>)",
	}},
}

func (j *JavaFunctionInitializer) DeclareTypes(ctx *TypeContext) error {
	return ctx.declareStubs("java.util.function", javaFunctionStubs)
}

func (j *JavaFunctionInitializer) InitMembers(ctx *TypeContext) error {
	return ctx.completeStubs("java.util.function", javaFunctionStubs)
}
