package builtins

// JavaLangInitializer seeds java.lang and java.lang.annotation.
type JavaLangInitializer struct{}

func (j *JavaLangInitializer) Name() string  { return "java.lang" }
func (j *JavaLangInitializer) Priority() int { return PriorityJavaLang }

var javaLangAnnotationStubs = []Stub{
	{Header: "public interface Annotation", Members: []string{
		"Class<? extends Annotation> annotationType()",
	}},
}

var javaLangStubs = []Stub{
	{Header: "public class Object", Members: []string{
		"public Object()",
		"public final Class<?> getClass()",
		"public int hashCode()",
		"public boolean equals(Object)",
		"protected Object clone() throws CloneNotSupportedException",
		"public String toString()",
		"public final void notify()",
		"public final void notifyAll()",
		"public final void wait() throws InterruptedException",
		"protected void finalize() throws Throwable",
	}},
	{Header: "public interface Comparable<T>", Members: []string{
		"int compareTo(T)",
	}},
	{Header: "public interface CharSequence", Members: []string{
		"int length()",
		"char charAt(int)",
		"CharSequence subSequence(int, int)",
		"String toString()",
		"default boolean isEmpty()",
	}},
	{Header: "public interface Iterable<T>", Members: []string{
		"Iterator<T> iterator()",
		"default void forEach(Consumer<? super T>)",
	}},
	{Header: "public interface Runnable", Members: []string{
		"void run()",
	}},
	{Header: "public interface AutoCloseable", Members: []string{
		"void close() throws Exception",
	}},
	{Header: "public interface Cloneable"},
	{Header: "public interface Appendable", Members: []string{
		"Appendable append(CharSequence) throws IOException",
	}},
	{Header: "public final class String implements Serializable, Comparable<String>, CharSequence", Members: []string{
		"public String()",
		"public String(String)",
		"public String(char[])",
		"public int length()",
		"public char charAt(int)",
		"public CharSequence subSequence(int, int)",
		"public String substring(int)",
		"public String substring(int, int)",
		"public int compareTo(String)",
		"public boolean equals(Object)",
		"public int hashCode()",
		"public String toString()",
		"public boolean isEmpty()",
		"public int indexOf(String)",
		"public String concat(String)",
		"public String trim()",
		"public char[] toCharArray()",
		"public static String valueOf(Object)",
		"public static String valueOf(int)",
		"public static String valueOf(char)",
		"public static String format(String, Object...)",
		"public static String join(CharSequence, CharSequence...)",
	}},
	{Header: "public abstract class Number implements Serializable", Members: []string{
		"public Number()",
		"public abstract int intValue()",
		"public abstract long longValue()",
		"public abstract float floatValue()",
		"public abstract double doubleValue()",
	}},
	{Header: "public final class Boolean implements Serializable, Comparable<Boolean>", Members: []string{
		"public boolean booleanValue()",
		"public int compareTo(Boolean)",
		"public static Boolean valueOf(boolean)",
	}},
	{Header: "public final class Character implements Serializable, Comparable<Character>", Members: []string{
		"public char charValue()",
		"public int compareTo(Character)",
		"public static Character valueOf(char)",
	}},
	{Header: "public final class Byte extends Number implements Comparable<Byte>", Members: []string{
		"public int intValue()", "public long longValue()", "public float floatValue()", "public double doubleValue()",
		"public byte byteValue()",
		"public int compareTo(Byte)",
		"public static Byte valueOf(byte)",
	}},
	{Header: "public final class Short extends Number implements Comparable<Short>", Members: []string{
		"public int intValue()", "public long longValue()", "public float floatValue()", "public double doubleValue()",
		"public short shortValue()",
		"public int compareTo(Short)",
		"public static Short valueOf(short)",
	}},
	{Header: "public final class Integer extends Number implements Comparable<Integer>", Members: []string{
		"public int intValue()", "public long longValue()", "public float floatValue()", "public double doubleValue()",
		"public int compareTo(Integer)",
		"public static Integer valueOf(int)",
		"public static int parseInt(String) throws NumberFormatException",
		"public static String toString(int)",
	}},
	{Header: "public final class Long extends Number implements Comparable<Long>", Members: []string{
		"public int intValue()", "public long longValue()", "public float floatValue()", "public double doubleValue()",
		"public int compareTo(Long)",
		"public static Long valueOf(long)",
		"public static long parseLong(String) throws NumberFormatException",
	}},
	{Header: "public final class Float extends Number implements Comparable<Float>", Members: []string{
		"public int intValue()", "public long longValue()", "public float floatValue()", "public double doubleValue()",
		"public int compareTo(Float)",
		"public static Float valueOf(float)",
	}},
	{Header: "public final class Double extends Number implements Comparable<Double>", Members: []string{
		"public int intValue()", "public long longValue()", "public float floatValue()", "public double doubleValue()",
		"public int compareTo(Double)",
		"public static Double valueOf(double)",
	}},
	{Header: "public final class Void"},
	{Header: "public final class Class<T> implements Serializable", Members: []string{
		"public String getName()",
		"public T cast(Object)",
		"public boolean isInstance(Object)",
		"public Class<? super T> getSuperclass()",
		"public <U> Class<? extends U> asSubclass(Class<U>)",
	}},
	{Header: "public abstract class Enum<E extends Enum<E>> implements Comparable<E>, Serializable", Members: []string{
		"protected Enum(String, int)",
		"public final String name()",
		"public final int ordinal()",
		"public final int compareTo(E)",
		"public final Class<E> getDeclaringClass()",
		"public static <T extends Enum<T>> T valueOf(Class<T>, String)",
	}},
	{Header: "public abstract class Record", Members: []string{
		"protected Record()",
		"public abstract boolean equals(Object)",
		"public abstract int hashCode()",
		"public abstract String toString()",
	}},
	{Header: "public class Throwable implements Serializable", Members: []string{
		"public Throwable()",
		"public Throwable(String)",
		"public Throwable(String, Throwable)",
		"public String getMessage()",
		"public Throwable getCause()",
		"public void printStackTrace()",
		"public final void addSuppressed(Throwable)",
	}},
	{Header: "public class Exception extends Throwable", Members: []string{
		"public Exception()", "public Exception(String)",
	}},
	{Header: "public class Error extends Throwable", Members: []string{
		"public Error()", "public Error(String)",
	}},
	{Header: "public class RuntimeException extends Exception", Members: []string{
		"public RuntimeException()", "public RuntimeException(String)",
	}},
	{Header: "public class InterruptedException extends Exception", Members: []string{
		"public InterruptedException()",
	}},
	{Header: "public class CloneNotSupportedException extends Exception", Members: []string{
		"public CloneNotSupportedException()",
	}},
	{Header: "public class IllegalArgumentException extends RuntimeException", Members: []string{
		"public IllegalArgumentException()", "public IllegalArgumentException(String)",
	}},
	{Header: "public class NumberFormatException extends IllegalArgumentException", Members: []string{
		"public NumberFormatException(String)",
	}},
	{Header: "public class IllegalStateException extends RuntimeException", Members: []string{
		"public IllegalStateException(String)",
	}},
	{Header: "public class NullPointerException extends RuntimeException", Members: []string{
		"public NullPointerException()",
	}},
	{Header: "public class ClassCastException extends RuntimeException", Members: []string{
		"public ClassCastException()",
	}},
	{Header: "public class UnsupportedOperationException extends RuntimeException", Members: []string{
		"public UnsupportedOperationException()",
	}},
	{Header: "public class IndexOutOfBoundsException extends RuntimeException", Members: []string{
		"public IndexOutOfBoundsException(int)",
	}},
	{Header: "public final class StringBuilder implements Serializable, CharSequence, Appendable", Members: []string{
		"public StringBuilder()",
		"public StringBuilder(String)",
		"public StringBuilder append(Object)",
		"public StringBuilder append(String)",
		"public StringBuilder append(CharSequence)",
		"public StringBuilder append(int)",
		"public StringBuilder append(char)",
		"public int length()",
		"public char charAt(int)",
		"public CharSequence subSequence(int, int)",
		"public String toString()",
	}},
	{Header: "public final class Math", Members: []string{
		"public static int abs(int)",
		"public static long abs(long)",
		"public static double abs(double)",
		"public static int max(int, int)",
		"public static long max(long, long)",
		"public static double max(double, double)",
		"public static int min(int, int)",
		"public static double sqrt(double)",
	}},
	{Header: "public final class System", Members: []string{
		"public static long currentTimeMillis()",
		"public static void arraycopy(Object, int, Object, int, int)",
	}},
	{Header: "public @interface Override"},
	{Header: "public @interface Deprecated"},
	{Header: "public @interface FunctionalInterface"},
	{Header: "public @interface SafeVarargs"},
	{Header: "public @interface SuppressWarnings", Members: []string{
		"String[] value()",
	}},
}

func (j *JavaLangInitializer) DeclareTypes(ctx *TypeContext) error {
	if err := ctx.declareStubs("java.lang.annotation", javaLangAnnotationStubs); err != nil {
		return err
	}
	return ctx.declareStubs("java.lang", javaLangStubs)
}

func (j *JavaLangInitializer) InitMembers(ctx *TypeContext) error {
	if err := ctx.completeStubs("java.lang.annotation", javaLangAnnotationStubs); err != nil {
		return err
	}
	return ctx.completeStubs("java.lang", javaLangStubs)
}
